package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	errAccountNotFound = "account not found"
	errAccountExists   = "account with this email already exists"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"
	errFailedEnsureSchemaFmt         = "failed to ensure schema: %w"

	errFailedCreateAccountFmt = "failed to create account: %w"
	errFailedGetAccountFmt    = "failed to get account: %w"
	errFailedListAccountsFmt  = "failed to list accounts: %w"
	errFailedScanAccountFmt   = "failed to scan account: %w"
	errIterateAccountsFmt     = "error iterating accounts: %w"
	errFailedUpdateAccountFmt = "failed to update account: %w"
	errFailedInsertAuditFmt   = "failed to insert audit event: %w"
)

var (
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedEnsureSchema         = func(err error) error { return fmt.Errorf(errFailedEnsureSchemaFmt, err) }
	errFailedCreateAccount        = func(err error) error { return fmt.Errorf(errFailedCreateAccountFmt, err) }
	errFailedGetAccount           = func(err error) error { return fmt.Errorf(errFailedGetAccountFmt, err) }
	errFailedListAccounts         = func(err error) error { return fmt.Errorf(errFailedListAccountsFmt, err) }
	errFailedScanAccount          = func(err error) error { return fmt.Errorf(errFailedScanAccountFmt, err) }
	errIterateAccounts            = func(err error) error { return fmt.Errorf(errIterateAccountsFmt, err) }
	errFailedUpdateAccount        = func(err error) error { return fmt.Errorf(errFailedUpdateAccountFmt, err) }
	errFailedInsertAudit          = func(err error) error { return fmt.Errorf(errFailedInsertAuditFmt, err) }
)
