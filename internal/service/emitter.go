package service

// Emitter — то, что сервисам нужно от realtime-слоя. Реализуется ws.Hub;
// доставка fire-and-forget, без гарантий на этом уровне. Комнатная рассылка
// (typing) остаётся делом socket-адаптера, сервисы адресуют пользователей
type Emitter interface {
	EmitToUser(userID int64, event string, data any)
}
