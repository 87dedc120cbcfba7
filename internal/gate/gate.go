// Package gate реализует машину состояний доступа к зонам приложения.
//
// Решение вычисляется на каждый входящий запрос как обычное возвращаемое
// значение, а не исключение: Allow либо Redirect с одним из фиксированных
// путей. Проверки выполняются в строго заданном порядке, первое
// сработавшее правило определяет редирект — дальнейшие проверки не
// выполняются, иначе возможны петли редиректов.
//
// Недостаточная роль для зоны admin возвращается как identity.ErrForbidden
// (generic 403 без деталей), а не NotFound; вопрос о сокрытии
// существования ресурса ждёт продуктового решения.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/services/identity"
)

// State состояние запроса относительно зоны.
type State string

// Состояния машины доступа.
const (
	StateUnauthenticated         State = "unauthenticated"
	StateAuthenticatedNoUsername State = "authenticated_no_username"
	StateActive                  State = "active"
	StateActiveAdmin             State = "active_admin"
)

// Decision решение гейта: пропустить запрос или вернуть редирект.
// Значение временное, никогда не сохраняется.
type Decision struct {
	Allowed  bool
	Location string
}

// Allow возвращает пропускающее решение.
func Allow() Decision {
	return Decision{Allowed: true}
}

// RedirectTo возвращает решение-редирект на указанный путь.
func RedirectTo(path string) Decision {
	return Decision{Location: path}
}

// IdentityResolver описывает интерфейс разрешения сессии в пользователя.
type IdentityResolver interface {
	ResolveUser(ctx context.Context, token string) (*models.User, error)
}

// Gate вычисляет решения доступа по зонам.
type Gate struct {
	identity IdentityResolver
	log      *slog.Logger
}

// New создаёт новый Gate.
func New(resolver IdentityResolver, log *slog.Logger) *Gate {
	return &Gate{
		identity: resolver,
		log:      log,
	}
}

// StateOf возвращает состояние машины для разрешённого пользователя.
// nil означает отсутствие валидной сессии.
func StateOf(user *models.User) State {
	switch {
	case user == nil:
		return StateUnauthenticated
	case !user.HasUsername():
		return StateAuthenticatedNoUsername
	case user.IsAdmin():
		return StateActiveAdmin
	default:
		return StateActive
	}
}

// Evaluate вычисляет решение для запроса с данным сессионным токеном,
// целевой зоной и путём запроса.
//
// Порядок проверок фиксирован: сессия, затем онбординг, затем роль.
// Пользователь без username никогда не доходит до проверки роли.
// Единственная ошибка, которую возвращает Evaluate, — identity.ErrForbidden
// для зоны admin при недостаточной роли.
func (g *Gate) Evaluate(ctx context.Context, token string, area Area, path string) (Decision, error) {
	const op = "gate.Evaluate"

	user, err := g.identity.ResolveUser(ctx, token)
	if err != nil && !errors.Is(err, identity.ErrUnauthenticated) {
		// Сбой хранилища не должен маскироваться под отсутствие сессии.
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}

	state := StateOf(user)
	g.log.Debug("evaluating gate decision",
		sl.Op(op),
		slog.String("area", string(area)),
		slog.String("state", string(state)),
	)

	if state == StateUnauthenticated {
		if area == AreaAuth {
			if path == PathAuth {
				return RedirectTo(PathLogin), nil
			}
			return Allow(), nil
		}
		return RedirectTo(PathLogin), nil
	}

	if state == StateAuthenticatedNoUsername {
		if area == AreaOnboarding {
			if path == PathOnboarding {
				return RedirectTo(PathOnboardingUsername), nil
			}
			return Allow(), nil
		}
		return RedirectTo(PathOnboardingUsername), nil
	}

	switch area {
	case AreaAuth, AreaOnboarding:
		// Повторный вход в онбординг и страницы аутентификации идемпотентно
		// возвращают пользователя в дашборд.
		return RedirectTo(PathDashboard), nil
	case AreaDashboard:
		return Allow(), nil
	case AreaAdmin:
		if state != StateActiveAdmin {
			return Decision{}, fmt.Errorf("%s: %w", op, identity.ErrForbidden)
		}
		return Allow(), nil
	default:
		return Decision{}, fmt.Errorf("%s: unknown area %q", op, area)
	}
}
