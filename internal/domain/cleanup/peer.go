// Package cleanup — доменная логика массовой чистки чатов аккаунта.
// Здесь собраны:
//   - вычисление keep-set по папкам (dialog filters), чьё название содержит ключевое слово;
//   - классификация диалогов на «оставить», «покинуть» (каналы/группы) и «удалить» (личные чаты);
//   - исполнитель разрушительных операций с подтверждением и фиксированной паузой между вызовами.
//
// Пакет не ходит в сеть сам: все вызовы Telegram, ввод пользователя и ожидания
// внедряются через узкие интерфейсы, чтобы сценарий можно было гонять в тестах.
package cleanup

import (
	"fmt"
	"sort"

	"github.com/gotd/td/tg"
)

// PeerKind — тип сущности Telegram, на которую ссылается папка или диалог.
type PeerKind string

const (
	PeerKindUser    PeerKind = "user"
	PeerKindChat    PeerKind = "chat"
	PeerKindChannel PeerKind = "channel"
)

// PeerKey идентифицирует сущность парой {тип, id}. Id разных типов в Telegram
// живут в разных пространствах, поэтому сравнивать только числа нельзя.
type PeerKey struct {
	Kind PeerKind
	ID   int64
}

func (k PeerKey) String() string {
	return fmt.Sprintf("%s:%d", k.Kind, k.ID)
}

// PeerKeyFromPeer нормализует tg.PeerClass (peer из диалога) в PeerKey.
// Для неизвестных типов возвращает ok=false.
func PeerKeyFromPeer(peer tg.PeerClass) (PeerKey, bool) {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return PeerKey{Kind: PeerKindUser, ID: p.UserID}, true
	case *tg.PeerChat:
		return PeerKey{Kind: PeerKindChat, ID: p.ChatID}, true
	case *tg.PeerChannel:
		return PeerKey{Kind: PeerKindChannel, ID: p.ChannelID}, true
	default:
		return PeerKey{}, false
	}
}

// PeerKeyFromInput нормализует tg.InputPeerClass из include/pinned списков папки.
// InputPeerSelf превращается в пользователя selfID; при selfID == 0 он пропускается.
func PeerKeyFromInput(peer tg.InputPeerClass, selfID int64) (PeerKey, bool) {
	switch p := peer.(type) {
	case *tg.InputPeerUser:
		return PeerKey{Kind: PeerKindUser, ID: p.UserID}, true
	case *tg.InputPeerUserFromMessage:
		return PeerKey{Kind: PeerKindUser, ID: p.UserID}, true
	case *tg.InputPeerChat:
		return PeerKey{Kind: PeerKindChat, ID: p.ChatID}, true
	case *tg.InputPeerChannel:
		return PeerKey{Kind: PeerKindChannel, ID: p.ChannelID}, true
	case *tg.InputPeerChannelFromMessage:
		return PeerKey{Kind: PeerKindChannel, ID: p.ChannelID}, true
	case *tg.InputPeerSelf:
		if selfID == 0 {
			return PeerKey{}, false
		}
		return PeerKey{Kind: PeerKindUser, ID: selfID}, true
	default:
		return PeerKey{}, false
	}
}

// KeepSet — множество сущностей, которые нельзя трогать.
type KeepSet map[PeerKey]struct{}

// Add добавляет ключ в множество.
func (s KeepSet) Add(key PeerKey) {
	s[key] = struct{}{}
}

// Has проверяет принадлежность ключа множеству. Безопасен для nil.
func (s KeepSet) Has(key PeerKey) bool {
	_, ok := s[key]
	return ok
}

// Len возвращает размер множества.
func (s KeepSet) Len() int {
	return len(s)
}

// Keys возвращает отсортированный список ключей (для логов и тестов).
func (s KeepSet) Keys() []PeerKey {
	keys := make([]PeerKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].ID < keys[j].ID
	})
	return keys
}
