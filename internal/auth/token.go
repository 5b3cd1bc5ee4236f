package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	// accessTokenTTL — срок жизни пользовательского токена.
	accessTokenTTL = 24 * time.Hour
	// serviceTokenTTL — срок жизни сервисного токена. Несколько минут
	// достаточно для одного прохода оформления заказа.
	serviceTokenTTL = 5 * time.Minute

	// serviceSubject — субъект сервисного токена оркестратора.
	serviceSubject = "order-service"
)

// Claims — полезная нагрузка токена: стандартные клеймы плюс роль.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer подписывает и проверяет HS256-токены общим секретом.
// Секрет задаётся один раз при старте процесса и дальше только читается.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer создаёт issuer с общим секретом.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AccessToken выпускает пользовательский токен {sub, role, exp}.
func (i *TokenIssuer) AccessToken(subject, role string) (string, error) {
	return i.sign(subject, role, accessTokenTTL)
}

// MintServiceToken чеканит короткоживущий токен с ролью admin,
// которым оркестратор пишет остатки в каталог. Чистая функция времени
// и секрета: внешних вызовов нет, токен не кешируется.
func (i *TokenIssuer) MintServiceToken() (string, error) {
	return i.sign(serviceSubject, domain.RoleAdmin, serviceTokenTTL)
}

func (i *TokenIssuer) sign(subject, role string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse проверяет подпись и срок действия токена.
func (i *TokenIssuer) Parse(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(i.now))
	if err != nil || !parsed.Valid {
		return Claims{}, domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, domain.ErrInvalidToken
	}
	return claims, nil
}

var _ domain.ServiceTokenMinter = (*TokenIssuer)(nil)
