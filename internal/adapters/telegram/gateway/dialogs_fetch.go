package gateway

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
)

const (
	dialogFetchWaitMinMs  = 500
	dialogFetchWaitMaxMs  = 1500
	dialogFetchPageLimit  = 100
	dialogFetchZeroOffset = 0
)

var errDialogsNotModified = errors.New("dialogs not modified")

// fetchDialogs последовательно выгружает весь список диалогов через MessagesGetDialogs.
// Пагинация по (offset_date, offset_id, offset_peer); access_hash для offset_peer
// берётся из уже полученных сущностей. Между страницами — короткая случайная пауза.
func (g *Gateway) fetchDialogs(ctx context.Context) (*tg.MessagesDialogs, error) {
	result := &tg.MessagesDialogs{}

	offsetDate := dialogFetchZeroOffset
	offsetID := dialogFetchZeroOffset
	var offsetPeer tg.InputPeerClass = &tg.InputPeerEmpty{}

	userHashes := make(map[int64]int64)
	channelHashes := make(map[int64]int64)

	for page := 0; ; page++ {
		if page > 0 {
			g.pageWait(ctx, dialogFetchWaitMinMs, dialogFetchWaitMaxMs)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := g.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
			OffsetDate: offsetDate,
			OffsetID:   offsetID,
			OffsetPeer: offsetPeer,
			Limit:      dialogFetchPageLimit,
		})
		if err != nil {
			return nil, errors.Wrap(err, "MessagesGetDialogs")
		}

		batch, full, err := normalizeDialogsResponse(resp)
		if err != nil {
			if errors.Is(err, errDialogsNotModified) {
				return result, nil
			}
			return nil, err
		}

		if len(batch.Dialogs) == 0 {
			break
		}

		result.Dialogs = append(result.Dialogs, batch.Dialogs...)
		result.Messages = append(result.Messages, batch.Messages...)
		result.Chats = append(result.Chats, batch.Chats...)
		result.Users = append(result.Users, batch.Users...)

		// messages.dialogs (не slice) означает, что сервер отдал всё сразу.
		if full || len(batch.Dialogs) < dialogFetchPageLimit {
			break
		}

		updateHashesFromBatch(batch, userHashes, channelHashes)

		lastDialog := batch.Dialogs[len(batch.Dialogs)-1]
		prevOffsetDate, prevOffsetID := offsetDate, offsetID

		switch dlg := lastDialog.(type) {
		case *tg.Dialog:
			offsetID = dlg.TopMessage
			offsetDate = messageDate(batch.Messages, dlg.TopMessage)
			offsetPeer = dialogPeerToInput(dlg.Peer, userHashes, channelHashes)
		case *tg.DialogFolder:
			offsetID = dlg.TopMessage
			offsetDate = messageDate(batch.Messages, dlg.TopMessage)
			offsetPeer = dialogPeerToInput(dlg.Peer, userHashes, channelHashes)
		default:
			offsetPeer = &tg.InputPeerEmpty{}
		}

		if offsetDate == dialogFetchZeroOffset {
			offsetDate = prevOffsetDate
		}
		if offsetID == dialogFetchZeroOffset {
			offsetID = prevOffsetID
		}
		// Курсор не сдвинулся: дальше пойдут те же страницы.
		if offsetDate == prevOffsetDate && offsetID == prevOffsetID {
			break
		}
	}

	return result, nil
}

// normalizeDialogsResponse приводит варианты ответа к *tg.MessagesDialogs.
// full=true, если сервер вернул полный список (messages.dialogs).
func normalizeDialogsResponse(resp tg.MessagesDialogsClass) (*tg.MessagesDialogs, bool, error) {
	switch data := resp.(type) {
	case *tg.MessagesDialogs:
		return data, true, nil
	case *tg.MessagesDialogsSlice:
		return &tg.MessagesDialogs{
			Dialogs:  data.Dialogs,
			Messages: data.Messages,
			Chats:    data.Chats,
			Users:    data.Users,
		}, false, nil
	case *tg.MessagesDialogsNotModified:
		return nil, false, errDialogsNotModified
	default:
		return nil, false, errors.Errorf("unexpected dialogs response: %T", resp)
	}
}

func updateHashesFromBatch(batch *tg.MessagesDialogs, userHashes, channelHashes map[int64]int64) {
	for _, entity := range batch.Users {
		if user, ok := entity.(*tg.User); ok {
			userHashes[user.ID] = user.AccessHash
		}
	}
	for _, entity := range batch.Chats {
		switch item := entity.(type) {
		case *tg.Channel:
			channelHashes[item.ID] = item.AccessHash
		case *tg.ChannelForbidden:
			channelHashes[item.ID] = item.AccessHash
		}
	}
}

func messageDate(messages []tg.MessageClass, id int) int {
	for _, msg := range messages {
		switch item := msg.(type) {
		case *tg.Message:
			if item.ID == id {
				return item.Date
			}
		case *tg.MessageService:
			if item.ID == id {
				return item.Date
			}
		}
	}
	return dialogFetchZeroOffset
}

func dialogPeerToInput(peer tg.PeerClass, userHashes, channelHashes map[int64]int64) tg.InputPeerClass {
	switch entity := peer.(type) {
	case *tg.PeerUser:
		return &tg.InputPeerUser{
			UserID:     entity.UserID,
			AccessHash: userHashes[entity.UserID],
		}
	case *tg.PeerChat:
		return &tg.InputPeerChat{ChatID: entity.ChatID}
	case *tg.PeerChannel:
		return &tg.InputPeerChannel{
			ChannelID:  entity.ChannelID,
			AccessHash: channelHashes[entity.ChannelID],
		}
	default:
		return &tg.InputPeerEmpty{}
	}
}
