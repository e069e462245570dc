package config

type Auth struct {
	// JWTSecret enables bearer token verification. When empty the operator is
	// taken from the X-Operator header instead.
	JWTSecret string `env:"AUTH_JWT_SECRET"`
}
