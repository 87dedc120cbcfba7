package models

// Subscription представляет локальную копию подписки пользователя,
// каноническое состояние которой живёт у внешнего платёжного провайдера.
//
// На одного пользователя приходится не более одной записи. Отсутствие
// записи трактуется как тарифный план free. Запись никогда не удаляется,
// только переводится обратно на план free.
type Subscription struct {
	UserUID           string // Владелец подписки (1:1)
	PlanID            string // Идентификатор плана из каталога, по умолчанию free
	Interval          string // Интервал оплаты: month или year, значим только для платных планов
	CustomerID        string // Идентификатор клиента у платёжного провайдера
	CurrentPeriodEnd  int64  // Конец оплаченного периода, unix-секунды
	CancelAtPeriodEnd bool   // Отмена по окончании периода
}

// FreeSubscription возвращает снапшот подписки по умолчанию для
// пользователя без записи в хранилище.
func FreeSubscription(userUID string) *Subscription {
	return &Subscription{
		UserUID: userUID,
		PlanID:  "free",
	}
}
