package ports

import "context"

// ScopeLocker lock exclusivo por clave que serializa commits y reversas sobre el mismo alcance.
// unlock debe llamarse siempre; es seguro llamarlo más de una vez.
type ScopeLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
