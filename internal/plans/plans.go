// Package plans содержит статический каталог тарифных планов.
//
// Каталог неизменяем после старта процесса: цены заданы в минорных
// единицах валюты (центах) на пару (интервал, валюта). Ровно один план
// имеет идентификатор free и не имеет цен.
package plans

// Interval определяет интервал оплаты подписки.
type Interval string

// Поддерживаемые интервалы оплаты.
const (
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// Currency определяет валюту цены.
type Currency string

// Поддерживаемые валюты.
const (
	CurrencyUSD Currency = "usd"
	CurrencyEUR Currency = "eur"
)

// Идентификаторы планов.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// Plan описывает тарифный план каталога.
type Plan struct {
	ID          string
	Name        string
	Description string
	// Prices задаёт цену в минорных единицах на пару (интервал, валюта).
	// У плана free карта пуста.
	Prices map[Interval]map[Currency]int
}

// catalog перечисляет планы в порядке объявления. Порядок стабилен и
// используется AllPaid.
var catalog = []Plan{
	{
		ID:          PlanFree,
		Name:        "Free",
		Description: "Start with the basics, upgrade anytime.",
	},
	{
		ID:          PlanPro,
		Name:        "Pro",
		Description: "Access to all features and unlimited projects.",
		Prices: map[Interval]map[Currency]int{
			IntervalMonth: {CurrencyUSD: 1990, CurrencyEUR: 1990},
			IntervalYear:  {CurrencyUSD: 19990, CurrencyEUR: 19990},
		},
	},
}

// ByID возвращает план по идентификатору. Второе значение false, если
// план не объявлен в каталоге.
func ByID(id string) (Plan, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// PriceFor возвращает цену плана для пары (интервал, валюта).
// Для плана free и любого необъявленного сочетания второе значение false.
func PriceFor(planID string, interval Interval, currency Currency) (int, bool) {
	p, ok := ByID(planID)
	if !ok {
		return 0, false
	}
	amount, ok := p.Prices[interval][currency]
	if !ok {
		return 0, false
	}
	return amount, ok
}

// All возвращает все планы каталога в порядке объявления.
func All() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// AllPaid возвращает платные планы каталога в порядке объявления.
func AllPaid() []Plan {
	var paid []Plan
	for _, p := range catalog {
		if p.ID != PlanFree {
			paid = append(paid, p)
		}
	}
	return paid
}

// PriceRef строит ссылку на цену у платёжного провайдера в формате
// plan_interval_currency, например pro_month_usd.
func PriceRef(planID string, interval Interval, currency Currency) string {
	return planID + "_" + string(interval) + "_" + string(currency)
}
