// Package gateway — реализация cleanup.Gateway поверх tg.Client.
package gateway

import (
	"context"
	"strconv"
	"strings"

	"telegram-nuke/internal/domain/cleanup"
	"telegram-nuke/internal/infra/logger"
	"telegram-nuke/internal/infra/pr"
	tgruntime "telegram-nuke/internal/infra/telegram/runtime"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// API — подмножество методов tg.Client, которыми пользуется шлюз.
type API interface {
	MessagesGetDialogFilters(ctx context.Context) (*tg.MessagesDialogFilters, error)
	MessagesGetDialogs(ctx context.Context, request *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error)
	ChannelsLeaveChannel(ctx context.Context, channel tg.InputChannelClass) (tg.UpdatesClass, error)
	MessagesDeleteChatUser(ctx context.Context, request *tg.MessagesDeleteChatUserRequest) (tg.UpdatesClass, error)
	MessagesDeleteHistory(ctx context.Context, request *tg.MessagesDeleteHistoryRequest) (*tg.MessagesAffectedHistory, error)
}

var _ API = (*tg.Client)(nil)

// Gateway ходит в Telegram от имени пользователя selfID.
type Gateway struct {
	api      API
	selfID   int64
	pageWait func(ctx context.Context, minMs, maxMs int)
}

var _ cleanup.Gateway = (*Gateway)(nil)

// New создаёт шлюз. selfID нужен для разрешения InputPeerSelf в папках.
func New(api API, selfID int64) *Gateway {
	return &Gateway{api: api, selfID: selfID, pageWait: tgruntime.WaitRandomTimeMs}
}

// Folders возвращает папки аккаунта; системная папка «все чаты» пропускается.
func (g *Gateway) Folders(ctx context.Context) ([]cleanup.Folder, error) {
	resp, err := g.api.MessagesGetDialogFilters(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get dialog filters")
	}
	if logger.IsDebugEnabled() {
		for _, f := range resp.Filters {
			logger.Debug("Dialog filter", zap.String("dump", pr.Pf(f)))
		}
	}
	return cleanup.FoldersFromTL(resp.Filters, g.selfID), nil
}

// Dialogs выгружает все диалоги основного списка.
func (g *Gateway) Dialogs(ctx context.Context) ([]cleanup.Dialog, error) {
	raw, err := g.fetchDialogs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fetch dialogs")
	}
	dialogs := DialogsFromTL(raw)
	logger.Debug("Dialogs fetched", zap.Int("count", len(dialogs)))
	return dialogs, nil
}

// Leave выходит из канала/супергруппы или из обычной группы.
func (g *Gateway) Leave(ctx context.Context, r cleanup.Removal) error {
	switch p := r.Dialog.Entity.(type) {
	case *tg.InputPeerChannel:
		_, err := g.api.ChannelsLeaveChannel(ctx, &tg.InputChannel{
			ChannelID:  p.ChannelID,
			AccessHash: p.AccessHash,
		})
		return err
	case *tg.InputPeerChat:
		_, err := g.api.MessagesDeleteChatUser(ctx, &tg.MessagesDeleteChatUserRequest{
			ChatID: p.ChatID,
			UserID: &tg.InputUserSelf{},
		})
		return err
	default:
		return errors.Errorf("cannot leave %s: unsupported peer %T", r.Dialog.Key, r.Dialog.Entity)
	}
}

// DeleteHistory удаляет историю диалога у себя одним запросом (max_id=0, без revoke).
func (g *Gateway) DeleteHistory(ctx context.Context, r cleanup.Removal) error {
	if r.Dialog.Entity == nil {
		return errors.Errorf("cannot delete %s: no input peer", r.Dialog.Key)
	}
	_, err := g.api.MessagesDeleteHistory(ctx, &tg.MessagesDeleteHistoryRequest{
		Peer:      r.Dialog.Entity,
		MaxID:     0,
		JustClear: false,
		Revoke:    false,
	})
	return err
}

// DialogsFromTL превращает ответ MessagesGetDialogs в записи диалогов.
// Каждый peer встречается не больше одного раза, порядок сохраняется.
func DialogsFromTL(raw *tg.MessagesDialogs) []cleanup.Dialog {
	if raw == nil {
		return nil
	}

	users := make(map[int64]*tg.User, len(raw.Users))
	for _, u := range raw.Users {
		if user, ok := u.(*tg.User); ok {
			users[user.ID] = user
		}
	}
	// Обычные группы и каналы живут в разных пространствах id.
	basicChats := make(map[int64]tg.ChatClass)
	channels := make(map[int64]tg.ChatClass)
	for _, c := range raw.Chats {
		switch c.(type) {
		case *tg.Chat, *tg.ChatForbidden:
			basicChats[c.GetID()] = c
		case *tg.Channel, *tg.ChannelForbidden:
			channels[c.GetID()] = c
		}
	}

	seen := make(map[cleanup.PeerKey]struct{}, len(raw.Dialogs))
	out := make([]cleanup.Dialog, 0, len(raw.Dialogs))
	for _, d := range raw.Dialogs {
		dlg, ok := d.(*tg.Dialog)
		if !ok {
			continue
		}
		item, ok := dialogFromPeer(dlg.Peer, users, basicChats, channels)
		if !ok {
			continue
		}
		if _, dup := seen[item.Key]; dup {
			continue
		}
		seen[item.Key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func dialogFromPeer(
	peer tg.PeerClass,
	users map[int64]*tg.User,
	basicChats, channels map[int64]tg.ChatClass,
) (cleanup.Dialog, bool) {
	key, ok := cleanup.PeerKeyFromPeer(peer)
	if !ok {
		return cleanup.Dialog{}, false
	}
	d := cleanup.Dialog{Key: key}

	switch key.Kind {
	case cleanup.PeerKindUser:
		input := &tg.InputPeerUser{UserID: key.ID}
		if u := users[key.ID]; u != nil {
			input.AccessHash = u.AccessHash
			d.Name = userName(u)
		} else {
			d.Name = fallbackName(key)
		}
		d.Entity = input

	case cleanup.PeerKindChat:
		d.IsGroup = true
		d.Name = fallbackName(key)
		switch c := basicChats[key.ID].(type) {
		case *tg.Chat:
			d.Name = nonEmpty(c.Title, d.Name)
		case *tg.ChatForbidden:
			d.Name = nonEmpty(c.Title, d.Name)
		}
		d.Entity = &tg.InputPeerChat{ChatID: key.ID}

	case cleanup.PeerKindChannel:
		d.IsChannel = true
		d.Name = fallbackName(key)
		input := &tg.InputPeerChannel{ChannelID: key.ID}
		switch c := channels[key.ID].(type) {
		case *tg.Channel:
			d.Name = nonEmpty(c.Title, d.Name)
			d.IsGroup = c.Megagroup
			input.AccessHash = c.AccessHash
		case *tg.ChannelForbidden:
			d.Name = nonEmpty(c.Title, d.Name)
			d.IsGroup = c.Megagroup
			input.AccessHash = c.AccessHash
		}
		d.Entity = input
	}
	return d, true
}

func userName(u *tg.User) string {
	full := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	switch {
	case full != "":
		return full
	case u.Username != "":
		return "@" + u.Username
	case u.Deleted:
		return "Deleted Account"
	default:
		return "user " + strconv.FormatInt(u.ID, 10)
	}
}

func fallbackName(key cleanup.PeerKey) string {
	return string(key.Kind) + " " + strconv.FormatInt(key.ID, 10)
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
