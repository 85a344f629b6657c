package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawy/hawy-go/internal/knowledge"
	"github.com/hawy/hawy-go/internal/logging"
	"github.com/hawy/hawy-go/internal/model"
	"github.com/hawy/hawy-go/internal/oracle"
)

var testKnowledge = knowledge.Base{
	Knowledge:     "TAEKWON-DO ITF KNOWLEDGE: Chon-Ji has 19 movements.",
	LanguageRules: "Reply in the child's language.",
	Persona:       "You are Hawy the Hedgehog.",
}

func newTestChatService(chats *fakeChatStore, o oracle.Oracle, contextTurns int) *ChatService {
	svc := NewChatService(chats, o, testKnowledge, contextTurns, logging.Discard())

	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc
}

func TestSendMessage_BlankMessage(t *testing.T) {
	o := &fakeOracle{reply: "hi"}
	svc := newTestChatService(&fakeChatStore{}, o, DefaultContextTurns)

	_, err := svc.SendMessage(context.Background(), model.SendMessageRequest{Message: "  \n"})
	assert.ErrorIs(t, err, ErrMessageRequired)
	assert.Empty(t, o.prompts)
}

func TestSendMessage_AnonymousCreatesSession(t *testing.T) {
	chats := &fakeChatStore{}
	svc := newTestChatService(chats, &fakeOracle{reply: "Annyeong! 🦔"}, DefaultContextTurns)

	resp, err := svc.SendMessage(context.Background(), model.SendMessageRequest{Message: "Hello Hawy"})
	require.NoError(t, err)

	assert.Regexp(t, `^session_[0-9a-v]{20}$`, resp.SessionID)
	assert.Equal(t, "Annyeong! 🦔", resp.Response)
	assert.True(t, resp.Persisted)
	assert.Equal(t, 1, chats.len())
	assert.Equal(t, time.UTC, resp.Timestamp.Location())
}

func TestNewSessionIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id := NewSessionID()
		assert.True(t, strings.HasPrefix(id, "session_"))
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestSendMessageThenHistory(t *testing.T) {
	chats := &fakeChatStore{}
	svc := newTestChatService(chats, &fakeOracle{reply: "Ap Chagi is a front kick!"}, DefaultContextTurns)
	ctx := context.Background()

	resp, err := svc.SendMessage(ctx, model.SendMessageRequest{
		Message:   "What is a front kick?",
		SessionID: "session_abc",
		UserID:    "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "session_abc", resp.SessionID)

	history, err := svc.GetHistory(ctx, model.Owned("session_abc", "user-1"), 0)
	require.NoError(t, err)
	require.NotEmpty(t, history)

	last := history[len(history)-1]
	assert.Equal(t, "What is a front kick?", last.UserMessage)
	assert.Equal(t, "Ap Chagi is a front kick!", last.BotResponse)
	assert.Equal(t, "user-1", last.UserID)
	assert.True(t, last.Timestamp.Equal(resp.Timestamp))
}

func TestSendMessage_PromptCarriesHistory(t *testing.T) {
	chats := &fakeChatStore{}
	o := &fakeOracle{reply: "first reply"}
	svc := newTestChatService(chats, o, DefaultContextTurns)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: "first question", SessionID: "s1"})
	require.NoError(t, err)
	assert.NotContains(t, o.lastPrompt(), "Previous conversation:")

	o.reply = "second reply"
	_, err = svc.SendMessage(ctx, model.SendMessageRequest{Message: "second question", SessionID: "s1"})
	require.NoError(t, err)

	p := o.lastPrompt()
	assert.True(t, strings.HasPrefix(p, testKnowledge.Knowledge))
	assert.Contains(t, p, "Previous conversation:\nChild: first question\nHawy: first reply\n")
	assert.True(t, strings.HasSuffix(p, "Child's question: second question\n\nHawy's response:"))
	assert.NotContains(t, p, "Hawy: second reply")
}

func TestSendMessage_ContextWindow(t *testing.T) {
	chats := &fakeChatStore{}
	o := &fakeOracle{}
	svc := newTestChatService(chats, o, 2)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		o.reply = fmt.Sprintf("reply %d", i)
		_, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: fmt.Sprintf("question %d", i), SessionID: "s1"})
		require.NoError(t, err)
	}

	_, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: "question 4", SessionID: "s1"})
	require.NoError(t, err)

	p := o.lastPrompt()
	assert.NotContains(t, p, "question 1")
	assert.Less(t, strings.Index(p, "Child: question 2"), strings.Index(p, "Child: question 3"))
}

func TestSendMessage_OwnedScopeFiltersTranscript(t *testing.T) {
	chats := &fakeChatStore{}
	o := &fakeOracle{reply: "ok"}
	svc := newTestChatService(chats, o, DefaultContextTurns)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: "from user two", SessionID: "shared", UserID: "user-2"})
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, model.SendMessageRequest{Message: "from user one", SessionID: "shared", UserID: "user-1"})
	require.NoError(t, err)
	assert.NotContains(t, o.lastPrompt(), "from user two")

	_, err = svc.SendMessage(ctx, model.SendMessageRequest{Message: "anonymous", SessionID: "shared"})
	require.NoError(t, err)
	assert.Contains(t, o.lastPrompt(), "from user two")
	assert.Contains(t, o.lastPrompt(), "from user one")
}

func TestSendMessage_GenerationFailurePersistsNothing(t *testing.T) {
	chats := &fakeChatStore{}
	svc := newTestChatService(chats, oracle.Unavailable("quota exceeded"), DefaultContextTurns)

	_, err := svc.SendMessage(context.Background(), model.SendMessageRequest{Message: "hi", SessionID: "s1"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, oracle.ErrOracle)
	assert.Equal(t, 0, chats.len())
}

func TestSendMessage_FetchFailure(t *testing.T) {
	o := &fakeOracle{reply: "hi"}
	svc := newTestChatService(&fakeChatStore{recentErr: errStoreDown}, o, DefaultContextTurns)

	_, err := svc.SendMessage(context.Background(), model.SendMessageRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Empty(t, o.prompts)
}

func TestSendMessage_PersistFailureStillReplies(t *testing.T) {
	svc := newTestChatService(&fakeChatStore{appendErr: errStoreDown}, &fakeOracle{reply: "still here"}, DefaultContextTurns)

	resp, err := svc.SendMessage(context.Background(), model.SendMessageRequest{Message: "hi", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "still here", resp.Response)
	assert.False(t, resp.Persisted)
}

func TestGetHistory_OrderedRegardlessOfInsertion(t *testing.T) {
	chats := &fakeChatStore{}
	svc := newTestChatService(chats, &fakeOracle{}, DefaultContextTurns)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, n := range []int{2, 3, 1} {
		require.NoError(t, chats.Append(ctx, &model.ChatTurn{
			SessionID:   "s1",
			UserMessage: fmt.Sprintf("t%d", n),
			BotResponse: "ok",
			Timestamp:   base.Add(time.Duration(n) * time.Minute),
		}))
	}

	history, err := svc.GetHistory(ctx, model.Public("s1"), 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "t1", history[0].UserMessage)
	assert.Equal(t, "t2", history[1].UserMessage)
	assert.Equal(t, "t3", history[2].UserMessage)
}

func TestGetHistory_Limits(t *testing.T) {
	chats := &fakeChatStore{}
	svc := newTestChatService(chats, &fakeOracle{}, DefaultContextTurns)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := range 120 {
		require.NoError(t, chats.Append(ctx, &model.ChatTurn{
			SessionID:   "s1",
			UserMessage: fmt.Sprintf("q%d", i),
			Timestamp:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	history, err := svc.GetHistory(ctx, model.Public("s1"), 0)
	require.NoError(t, err)
	assert.Len(t, history, DefaultHistoryLimit)
	assert.Equal(t, "q119", history[len(history)-1].UserMessage)
	assert.Equal(t, "q100", history[0].UserMessage)

	history, err = svc.GetHistory(ctx, model.Public("s1"), 500)
	require.NoError(t, err)
	assert.Len(t, history, MaxHistoryLimit)

	history, err = svc.GetHistory(ctx, model.Public("s1"), 3)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestGetHistory_Errors(t *testing.T) {
	svc := newTestChatService(&fakeChatStore{recentErr: errStoreDown}, &fakeOracle{}, DefaultContextTurns)

	_, err := svc.GetHistory(context.Background(), model.Public("s1"), 10)
	assert.ErrorIs(t, err, ErrFetchFailed)

	_, err = svc.GetHistory(context.Background(), model.Public(""), 10)
	assert.ErrorIs(t, err, ErrSessionRequired)
}

func TestClearHistory(t *testing.T) {
	chats := &fakeChatStore{}
	svc := newTestChatService(chats, &fakeOracle{reply: "ok"}, DefaultContextTurns)
	ctx := context.Background()

	for _, msg := range []string{"one", "two"} {
		_, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: msg, SessionID: "s1"})
		require.NoError(t, err)
	}
	_, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: "other", SessionID: "s2"})
	require.NoError(t, err)

	n, err := svc.ClearHistory(ctx, model.Public("s1"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = svc.ClearHistory(ctx, model.Public("s1"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	history, err := svc.GetHistory(ctx, model.Public("s1"), 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	other, err := svc.GetHistory(ctx, model.Public("s2"), 0)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestClearHistory_OwnedLeavesOtherUsers(t *testing.T) {
	chats := &fakeChatStore{}
	svc := newTestChatService(chats, &fakeOracle{reply: "ok"}, DefaultContextTurns)
	ctx := context.Background()

	for _, uid := range []string{"user-1", "user-2", ""} {
		_, err := svc.SendMessage(ctx, model.SendMessageRequest{Message: "hi", SessionID: "s1", UserID: uid})
		require.NoError(t, err)
	}

	n, err := svc.ClearHistory(ctx, model.Owned("s1", "user-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 2, chats.len())
}

func TestClearHistory_StoreError(t *testing.T) {
	svc := newTestChatService(&fakeChatStore{deleteErr: errStoreDown}, &fakeOracle{}, DefaultContextTurns)

	_, err := svc.ClearHistory(context.Background(), model.Public("s1"))
	assert.ErrorIs(t, err, ErrDeleteFailed)
}
