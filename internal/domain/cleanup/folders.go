package cleanup

import (
	"strings"

	"github.com/gotd/td/tg"
)

// Folder — папка (dialog filter) аккаунта в том виде, который нужен для keep-set.
type Folder struct {
	ID           int
	Title        string
	IncludePeers []PeerKey
	PinnedPeers  []PeerKey
}

// Size возвращает число чатов, явно перечисленных в папке.
func (f Folder) Size() int {
	return len(f.IncludePeers) + len(f.PinnedPeers)
}

// FoldersFromTL переводит ответ messages.getDialogFilters в доменные папки.
// Папка «Все чаты» (DialogFilterDefault) пропускается: у неё нет списка чатов.
func FoldersFromTL(filters []tg.DialogFilterClass, selfID int64) []Folder {
	result := make([]Folder, 0, len(filters))
	for _, item := range filters {
		switch f := item.(type) {
		case *tg.DialogFilter:
			result = append(result, Folder{
				ID:           f.ID,
				Title:        f.Title.Text,
				IncludePeers: inputPeersToKeys(f.IncludePeers, selfID),
				PinnedPeers:  inputPeersToKeys(f.PinnedPeers, selfID),
			})
		case *tg.DialogFilterChatlist:
			result = append(result, Folder{
				ID:           f.ID,
				Title:        f.Title.Text,
				IncludePeers: inputPeersToKeys(f.IncludePeers, selfID),
				PinnedPeers:  inputPeersToKeys(f.PinnedPeers, selfID),
			})
		}
	}
	return result
}

func inputPeersToKeys(peers []tg.InputPeerClass, selfID int64) []PeerKey {
	if len(peers) == 0 {
		return nil
	}
	keys := make([]PeerKey, 0, len(peers))
	for _, p := range peers {
		if key, ok := PeerKeyFromInput(p, selfID); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// MatchFolder сообщает, содержит ли название папки ключевое слово (без учёта регистра).
// Пустое ключевое слово не совпадает ни с чем.
func MatchFolder(title, keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" || title == "" {
		return false
	}
	return strings.Contains(strings.ToLower(title), kw)
}

// ResolveKeepSet собирает keep-set: объединение include и pinned peers всех папок,
// название которых содержит keyword. Возвращает также список совпавших папок в
// исходном порядке. Если совпадений нет, keep-set пуст.
func ResolveKeepSet(folders []Folder, keyword string) (KeepSet, []Folder) {
	keep := make(KeepSet)
	var matched []Folder
	for _, f := range folders {
		if !MatchFolder(f.Title, keyword) {
			continue
		}
		matched = append(matched, f)
		for _, key := range f.IncludePeers {
			keep.Add(key)
		}
		for _, key := range f.PinnedPeers {
			keep.Add(key)
		}
	}
	return keep, matched
}
