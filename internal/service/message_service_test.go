package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
)

const (
	testSenderID    = "7b52009b-64fd-4a0a-9fe8-cf0b478f6f32"
	testRecipientID = "9e6a55b6-aeae-4d6a-8f25-df10dca6736c"
)

type fakeMessageRepo struct {
	messages map[string]*models.Message
	created  *models.Message
	replied  []string
	readAt   map[string]time.Time
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: map[string]*models.Message{}, readAt: map[string]time.Time{}}
}

func (f *fakeMessageRepo) List(_ context.Context, _ models.MessageFilter) ([]models.MessageDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeMessageRepo) FindByID(_ context.Context, id string) (*models.Message, error) {
	message, ok := f.messages[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *message
	return &copied, nil
}

func (f *fakeMessageRepo) Create(_ context.Context, message *models.Message) error {
	message.ID = "msg-new"
	f.created = message
	return nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, id string, readAt time.Time) error {
	f.readAt[id] = readAt
	return nil
}

func (f *fakeMessageRepo) MarkReplied(_ context.Context, id string) error {
	f.replied = append(f.replied, id)
	return nil
}

func (f *fakeMessageRepo) CountUnread(_ context.Context, _ string) (int, error) {
	return 0, nil
}

type fakeMessageUsers struct {
	users map[string]*models.User
}

func (f *fakeMessageUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func messageService(repo *fakeMessageRepo, status models.UserStatus) *MessageService {
	users := &fakeMessageUsers{users: map[string]*models.User{
		testRecipientID: {ID: testRecipientID, Status: status},
	}}
	return NewMessageService(repo, users, nil, nil)
}

func sendRequest() dto.SendMessageRequest {
	return dto.SendMessageRequest{
		RecipientID: testRecipientID,
		Subject:     "Reunião de pais",
		Body:        "Confirme presença até sexta.",
	}
}

func TestSendMessage(t *testing.T) {
	repo := newFakeMessageRepo()
	svc := messageService(repo, models.UserStatusActive)

	message, err := svc.Send(context.Background(), testSenderID, sendRequest())
	require.NoError(t, err)
	assert.Equal(t, testSenderID, message.SenderID)
	assert.Equal(t, testRecipientID, message.RecipientID)
	assert.Equal(t, models.MessageStatusSent, message.Status)
	require.NotNil(t, repo.created)
}

func TestSendMessageToSelf(t *testing.T) {
	svc := messageService(newFakeMessageRepo(), models.UserStatusActive)

	_, err := svc.Send(context.Background(), testRecipientID, sendRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSendMessageInactiveRecipient(t *testing.T) {
	svc := messageService(newFakeMessageRepo(), models.UserStatusSuspended)

	_, err := svc.Send(context.Background(), testSenderID, sendRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestSendReplyFlagsParent(t *testing.T) {
	repo := newFakeMessageRepo()
	parentID := "550e8400-e29b-41d4-a716-446655440001"
	repo.messages[parentID] = &models.Message{ID: parentID, SenderID: testRecipientID, RecipientID: testSenderID}
	svc := messageService(repo, models.UserStatusActive)

	req := sendRequest()
	req.ParentID = &parentID
	_, err := svc.Send(context.Background(), testSenderID, req)
	require.NoError(t, err)
	assert.Equal(t, []string{parentID}, repo.replied)
}

func TestSendReplyOutsideConversation(t *testing.T) {
	repo := newFakeMessageRepo()
	parentID := "550e8400-e29b-41d4-a716-446655440001"
	repo.messages[parentID] = &models.Message{ID: parentID, SenderID: "someone", RecipientID: "someone-else"}
	svc := messageService(repo, models.UserStatusActive)

	req := sendRequest()
	req.ParentID = &parentID
	_, err := svc.Send(context.Background(), testSenderID, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReadMarksFirstRead(t *testing.T) {
	repo := newFakeMessageRepo()
	repo.messages["msg-1"] = &models.Message{
		ID: "msg-1", SenderID: testSenderID, RecipientID: testRecipientID,
		Status: models.MessageStatusSent,
	}
	svc := messageService(repo, models.UserStatusActive)

	message, err := svc.Read(context.Background(), testRecipientID, "msg-1")
	require.NoError(t, err)
	require.NotNil(t, message.ReadAt)
	assert.Equal(t, models.MessageStatusRead, message.Status)
	assert.Contains(t, repo.readAt, "msg-1")
}

func TestReadBySenderDoesNotMark(t *testing.T) {
	repo := newFakeMessageRepo()
	repo.messages["msg-1"] = &models.Message{
		ID: "msg-1", SenderID: testSenderID, RecipientID: testRecipientID,
		Status: models.MessageStatusSent,
	}
	svc := messageService(repo, models.UserStatusActive)

	message, err := svc.Read(context.Background(), testSenderID, "msg-1")
	require.NoError(t, err)
	assert.Nil(t, message.ReadAt)
	assert.NotContains(t, repo.readAt, "msg-1")
}

func TestReadForeignMessage(t *testing.T) {
	repo := newFakeMessageRepo()
	repo.messages["msg-1"] = &models.Message{ID: "msg-1", SenderID: "a", RecipientID: "b"}
	svc := messageService(repo, models.UserStatusActive)

	_, err := svc.Read(context.Background(), testSenderID, "msg-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
