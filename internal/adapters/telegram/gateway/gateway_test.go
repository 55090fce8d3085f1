package gateway

import (
	"context"
	"errors"
	"testing"

	"telegram-nuke/internal/domain/cleanup"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	filters     []tg.DialogFilterClass
	pages       []tg.MessagesDialogsClass
	dialogsReqs []*tg.MessagesGetDialogsRequest
	left        []tg.InputChannelClass
	chatLeaves  []*tg.MessagesDeleteChatUserRequest
	deleted     []*tg.MessagesDeleteHistoryRequest
	err         error
}

func (f *fakeAPI) MessagesGetDialogFilters(context.Context) (*tg.MessagesDialogFilters, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &tg.MessagesDialogFilters{Filters: f.filters}, nil
}

func (f *fakeAPI) MessagesGetDialogs(_ context.Context, req *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error) {
	f.dialogsReqs = append(f.dialogsReqs, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pages) == 0 {
		return &tg.MessagesDialogsSlice{}, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeAPI) ChannelsLeaveChannel(_ context.Context, ch tg.InputChannelClass) (tg.UpdatesClass, error) {
	f.left = append(f.left, ch)
	return &tg.Updates{}, f.err
}

func (f *fakeAPI) MessagesDeleteChatUser(_ context.Context, req *tg.MessagesDeleteChatUserRequest) (tg.UpdatesClass, error) {
	f.chatLeaves = append(f.chatLeaves, req)
	return &tg.Updates{}, f.err
}

func (f *fakeAPI) MessagesDeleteHistory(_ context.Context, req *tg.MessagesDeleteHistoryRequest) (*tg.MessagesAffectedHistory, error) {
	f.deleted = append(f.deleted, req)
	return &tg.MessagesAffectedHistory{}, f.err
}

func newTestGateway(api API) *Gateway {
	g := New(api, 777)
	g.pageWait = func(context.Context, int, int) {}
	return g
}

func TestFoldersResolvesSelf(t *testing.T) {
	api := &fakeAPI{filters: []tg.DialogFilterClass{
		&tg.DialogFilterDefault{},
		&tg.DialogFilter{
			ID:           2,
			Title:        tg.TextWithEntities{Text: "Keep"},
			IncludePeers: []tg.InputPeerClass{&tg.InputPeerSelf{}, &tg.InputPeerChannel{ChannelID: 5}},
		},
	}}

	folders, err := newTestGateway(api).Folders(context.Background())
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, "Keep", folders[0].Title)
	assert.Equal(t, []cleanup.PeerKey{
		{Kind: cleanup.PeerKindUser, ID: 777},
		{Kind: cleanup.PeerKindChannel, ID: 5},
	}, folders[0].IncludePeers)
}

func TestFoldersError(t *testing.T) {
	api := &fakeAPI{err: errors.New("AUTH_KEY_UNREGISTERED")}
	_, err := newTestGateway(api).Folders(context.Background())
	require.Error(t, err)
}

func TestDialogsFromTLClassification(t *testing.T) {
	raw := &tg.MessagesDialogs{
		Dialogs: []tg.DialogClass{
			&tg.Dialog{Peer: &tg.PeerUser{UserID: 1}},
			&tg.Dialog{Peer: &tg.PeerChat{ChatID: 2}},
			&tg.Dialog{Peer: &tg.PeerChannel{ChannelID: 3}},
			&tg.Dialog{Peer: &tg.PeerChannel{ChannelID: 4}},
			&tg.Dialog{Peer: &tg.PeerUser{UserID: 1}},
			&tg.Dialog{Peer: &tg.PeerUser{UserID: 9}},
		},
		Users: []tg.UserClass{
			&tg.User{ID: 1, AccessHash: 11, FirstName: "Alice", LastName: "Smith"},
		},
		Chats: []tg.ChatClass{
			&tg.Chat{ID: 2, Title: "Family"},
			&tg.Channel{ID: 3, AccessHash: 33, Title: "News", Broadcast: true},
			&tg.Channel{ID: 4, AccessHash: 44, Title: "Devs", Megagroup: true},
		},
	}

	got := DialogsFromTL(raw)
	require.Len(t, got, 5)

	assert.Equal(t, "Alice Smith", got[0].Name)
	assert.True(t, got[0].IsPrivate())
	assert.Equal(t, &tg.InputPeerUser{UserID: 1, AccessHash: 11}, got[0].Entity)

	assert.Equal(t, "Family", got[1].Name)
	assert.True(t, got[1].IsGroup)
	assert.False(t, got[1].IsChannel)

	assert.Equal(t, "News", got[2].Name)
	assert.True(t, got[2].IsChannel)
	assert.False(t, got[2].IsGroup)
	assert.Equal(t, &tg.InputPeerChannel{ChannelID: 3, AccessHash: 33}, got[2].Entity)

	assert.True(t, got[3].IsChannel)
	assert.True(t, got[3].IsGroup)

	assert.Equal(t, "user 9", got[4].Name)
}

func TestDialogsFromTLChatAndChannelWithSameID(t *testing.T) {
	raw := &tg.MessagesDialogs{
		Dialogs: []tg.DialogClass{
			&tg.Dialog{Peer: &tg.PeerChannel{ChannelID: 5}},
			&tg.Dialog{Peer: &tg.PeerChat{ChatID: 5}},
		},
		Chats: []tg.ChatClass{
			&tg.Channel{ID: 5, AccessHash: 55, Title: "Devs", Megagroup: true},
			&tg.Chat{ID: 5, Title: "Family"},
		},
	}

	got := DialogsFromTL(raw)
	require.Len(t, got, 2)

	channel := got[0]
	assert.Equal(t, cleanup.PeerKey{Kind: cleanup.PeerKindChannel, ID: 5}, channel.Key)
	assert.Equal(t, "Devs", channel.Name)
	assert.True(t, channel.IsChannel)
	assert.True(t, channel.IsGroup)
	assert.Equal(t, &tg.InputPeerChannel{ChannelID: 5, AccessHash: 55}, channel.Entity)

	chat := got[1]
	assert.Equal(t, cleanup.PeerKey{Kind: cleanup.PeerKindChat, ID: 5}, chat.Key)
	assert.Equal(t, "Family", chat.Name)
	assert.True(t, chat.IsGroup)
	assert.False(t, chat.IsChannel)
	assert.Equal(t, &tg.InputPeerChat{ChatID: 5}, chat.Entity)
}

func TestUserNameFallbacks(t *testing.T) {
	assert.Equal(t, "@bob", userName(&tg.User{ID: 1, Username: "bob"}))
	assert.Equal(t, "Deleted Account", userName(&tg.User{ID: 1, Deleted: true}))
	assert.Equal(t, "Ann", userName(&tg.User{ID: 1, FirstName: " Ann "}))
}

func TestDialogsPaginates(t *testing.T) {
	first := &tg.MessagesDialogsSlice{Count: dialogFetchPageLimit + 1}
	for i := 1; i <= dialogFetchPageLimit; i++ {
		id := int64(i)
		first.Dialogs = append(first.Dialogs, &tg.Dialog{Peer: &tg.PeerUser{UserID: id}, TopMessage: i})
		first.Messages = append(first.Messages, &tg.Message{ID: i, Date: 1000 - i})
		first.Users = append(first.Users, &tg.User{ID: id, AccessHash: id * 10, FirstName: "u"})
	}
	second := &tg.MessagesDialogsSlice{
		Count:   dialogFetchPageLimit + 1,
		Dialogs: []tg.DialogClass{&tg.Dialog{Peer: &tg.PeerChannel{ChannelID: 500}, TopMessage: 1}},
		Chats:   []tg.ChatClass{&tg.Channel{ID: 500, AccessHash: 5, Title: "Last"}},
	}
	api := &fakeAPI{pages: []tg.MessagesDialogsClass{first, second}}

	dialogs, err := newTestGateway(api).Dialogs(context.Background())
	require.NoError(t, err)
	require.Len(t, dialogs, dialogFetchPageLimit+1)
	assert.Equal(t, "Last", dialogs[len(dialogs)-1].Name)

	require.Len(t, api.dialogsReqs, 2)
	next := api.dialogsReqs[1]
	assert.Equal(t, dialogFetchPageLimit, next.OffsetID)
	assert.Equal(t, 1000-dialogFetchPageLimit, next.OffsetDate)
	assert.Equal(t, &tg.InputPeerUser{UserID: dialogFetchPageLimit, AccessHash: dialogFetchPageLimit * 10}, next.OffsetPeer)
}

func TestDialogsFullResponseSinglePage(t *testing.T) {
	api := &fakeAPI{pages: []tg.MessagesDialogsClass{
		&tg.MessagesDialogs{
			Dialogs: []tg.DialogClass{&tg.Dialog{Peer: &tg.PeerChat{ChatID: 8}}},
			Chats:   []tg.ChatClass{&tg.ChatForbidden{ID: 8, Title: "Gone"}},
		},
	}}

	dialogs, err := newTestGateway(api).Dialogs(context.Background())
	require.NoError(t, err)
	require.Len(t, dialogs, 1)
	assert.Equal(t, "Gone", dialogs[0].Name)
	assert.Len(t, api.dialogsReqs, 1)
}

func TestDialogsWrapsAPIError(t *testing.T) {
	floodErr := errors.New("FLOOD_WAIT_30")
	api := &fakeAPI{err: floodErr}

	_, err := newTestGateway(api).Dialogs(context.Background())
	require.ErrorIs(t, err, floodErr)
	assert.Contains(t, err.Error(), "MessagesGetDialogs")
}

func TestDialogsUnexpectedResponse(t *testing.T) {
	_, _, err := normalizeDialogsResponse(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected dialogs response")
}

func TestLeaveChannelAndBasicGroup(t *testing.T) {
	api := &fakeAPI{}
	g := newTestGateway(api)
	ctx := context.Background()

	channel := cleanup.Removal{Dialog: cleanup.Dialog{
		Key:       cleanup.PeerKey{Kind: cleanup.PeerKindChannel, ID: 3},
		IsChannel: true,
		Entity:    &tg.InputPeerChannel{ChannelID: 3, AccessHash: 33},
	}, Category: cleanup.CategoryChannel}
	group := cleanup.Removal{Dialog: cleanup.Dialog{
		Key:     cleanup.PeerKey{Kind: cleanup.PeerKindChat, ID: 2},
		IsGroup: true,
		Entity:  &tg.InputPeerChat{ChatID: 2},
	}, Category: cleanup.CategoryGroup}

	require.NoError(t, g.Leave(ctx, channel))
	require.NoError(t, g.Leave(ctx, group))

	assert.Equal(t, []tg.InputChannelClass{&tg.InputChannel{ChannelID: 3, AccessHash: 33}}, api.left)
	require.Len(t, api.chatLeaves, 1)
	assert.Equal(t, int64(2), api.chatLeaves[0].ChatID)
	assert.IsType(t, &tg.InputUserSelf{}, api.chatLeaves[0].UserID)

	private := cleanup.Removal{Dialog: cleanup.Dialog{
		Key:    cleanup.PeerKey{Kind: cleanup.PeerKindUser, ID: 1},
		Entity: &tg.InputPeerUser{UserID: 1},
	}}
	require.Error(t, g.Leave(ctx, private))
}

func TestDeleteHistorySingleCall(t *testing.T) {
	api := &fakeAPI{}
	peer := &tg.InputPeerUser{UserID: 1, AccessHash: 11}
	r := cleanup.Removal{Dialog: cleanup.Dialog{Key: cleanup.PeerKey{Kind: cleanup.PeerKindUser, ID: 1}, Entity: peer}}

	require.NoError(t, newTestGateway(api).DeleteHistory(context.Background(), r))
	require.Len(t, api.deleted, 1)
	req := api.deleted[0]
	assert.Equal(t, peer, req.Peer)
	assert.Zero(t, req.MaxID)
	assert.False(t, req.JustClear)
	assert.False(t, req.Revoke)
}

func TestDeleteHistoryPropagatesError(t *testing.T) {
	api := &fakeAPI{err: errors.New("PEER_ID_INVALID")}
	r := cleanup.Removal{Dialog: cleanup.Dialog{Entity: &tg.InputPeerUser{UserID: 1}}}
	err := newTestGateway(api).DeleteHistory(context.Background(), r)
	require.EqualError(t, err, "PEER_ID_INVALID")
}
