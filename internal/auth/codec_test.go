package auth

import (
	"testing"
	"time"

	"storefront/internal/rbac"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_SignVerify(t *testing.T) {
	codecs := newTestCodecs()
	c, err := codecs.For(SchemeManager)
	require.NoError(t, err)

	token, err := c.Sign("m-1", rbac.ManagerRole(rbac.DepartmentSales))
	require.NoError(t, err)

	claims, outcome := c.Verify(token)
	require.Equal(t, OutcomeVerified, outcome)
	assert.Equal(t, "m-1", claims.ID)
	assert.Equal(t, rbac.ManagerRole(rbac.DepartmentSales), claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestCodec_SignRejectsForeignRole(t *testing.T) {
	codecs := newTestCodecs()
	admin, _ := codecs.For(SchemeAdmin)

	_, err := admin.Sign("a-1", rbac.RoleUser)
	assert.Error(t, err)

	_, err = admin.Sign("", rbac.RoleAdmin)
	assert.Error(t, err)
}

func TestCodec_CrossSchemeNeverVerifies(t *testing.T) {
	codecs := newTestCodecs()
	tokens := map[Scheme]string{
		SchemeAdmin:   sign(t, codecs, SchemeAdmin, "a", rbac.RoleAdmin),
		SchemeManager: sign(t, codecs, SchemeManager, "m", rbac.ManagerRole(rbac.DepartmentFinance)),
		SchemeUser:    sign(t, codecs, SchemeUser, "u", rbac.RoleUser),
	}

	for issuer, token := range tokens {
		for _, verifier := range schemeOrder {
			c, _ := codecs.For(verifier)
			_, outcome := c.Verify(token)
			if issuer == verifier {
				assert.Equal(t, OutcomeVerified, outcome, "%s under %s", issuer, verifier)
			} else {
				assert.Equal(t, OutcomeInvalid, outcome, "%s under %s", issuer, verifier)
			}
		}
	}
}

func TestCodec_Expired(t *testing.T) {
	cfg := testAuthConfig()
	past := time.Now().Add(-48 * time.Hour)
	issuer := NewCodec(SchemeUser, cfg.UserSecret, cfg.UserTokenTTL).WithClock(func() time.Time { return past })

	token, err := issuer.Sign("u-1", rbac.RoleUser)
	require.NoError(t, err)

	verifier := NewCodec(SchemeUser, cfg.UserSecret, cfg.UserTokenTTL)
	claims, outcome := verifier.Verify(token)
	assert.Nil(t, claims)
	assert.Equal(t, OutcomeExpired, outcome)
}

func TestCodec_RejectsMalformedAndUnsigned(t *testing.T) {
	cfg := testAuthConfig()
	c := NewCodec(SchemeUser, cfg.UserSecret, cfg.UserTokenTTL)

	_, outcome := c.Verify("")
	assert.Equal(t, OutcomeAbsent, outcome)

	_, outcome = c.Verify("not.a.token")
	assert.Equal(t, OutcomeInvalid, outcome)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		ID:               "u-1",
		Role:             rbac.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, outcome = c.Verify(unsigned)
	assert.Equal(t, OutcomeInvalid, outcome)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: "u-1", Role: rbac.RoleUser})
	token, err := noExp.SignedString([]byte(cfg.UserSecret))
	require.NoError(t, err)
	_, outcome = c.Verify(token)
	assert.Equal(t, OutcomeInvalid, outcome)
}

func TestCodecs_SignFor(t *testing.T) {
	codecs := newTestCodecs()

	token, c, err := codecs.SignFor(rbac.Principal{ID: "m", Role: rbac.ManagerRole(rbac.DepartmentMarketing)})
	require.NoError(t, err)
	assert.Equal(t, SchemeManager, c.Scheme())
	assert.Equal(t, time.Hour, c.TTL())
	assert.NotEmpty(t, token)

	_, _, err = codecs.SignFor(rbac.Principal{ID: "x", Role: "root"})
	assert.Error(t, err)
}
