package gate

// Константы путей редиректов. Это единственные значения, которые может
// нести решение Redirect.
const (
	PathAuth               = "/auth"
	PathLogin              = "/auth/login"
	PathOnboarding         = "/onboarding"
	PathOnboardingUsername = "/onboarding/username"
	PathDashboard          = "/dashboard"
	PathAdmin              = "/admin"
)

// Area определяет целевую зону приложения, для входа в которую
// вычисляется решение.
type Area string

// Зоны приложения.
const (
	AreaAuth       Area = "auth"
	AreaOnboarding Area = "onboarding"
	AreaDashboard  Area = "dashboard"
	AreaAdmin      Area = "admin"
)

// ParseArea возвращает зону по её имени. Второе значение false для
// неизвестной зоны.
func ParseArea(s string) (Area, bool) {
	switch Area(s) {
	case AreaAuth, AreaOnboarding, AreaDashboard, AreaAdmin:
		return Area(s), true
	}
	return "", false
}
