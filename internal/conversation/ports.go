package conversation

import (
	"context"

	"github.com/futig/panel-product-bot/internal/entity"
)

type InputKind string

const (
	InputText    InputKind = "text"
	InputPhoto   InputKind = "photo"
	InputCommand InputKind = "command"
)

type Command string

const (
	CommandStart            Command = "start"
	CommandBeginWorkflow    Command = "begin-product-workflow"
	CommandCancel           Command = "cancel"
	CommandResetCredentials Command = "reset-credentials"
)

// PhotoRef points at an image held by the chat transport.
type PhotoRef struct {
	FileID   string
	FileName string // empty for compressed photos
	Size     int64  // declared size, 0 when unknown
}

// Event is one incoming chat input.
type Event struct {
	ChatID  entity.ChatID
	Kind    InputKind
	Text    string
	Command Command
	Photo   *PhotoRef
}

// RemoteFile is a transport file ready to be downloaded.
type RemoteFile struct {
	Path string
	Size int64
}

type Replier interface {
	SendText(ctx context.Context, chatID entity.ChatID, text string) error
	SendPhoto(ctx context.Context, chatID entity.ChatID, photo PhotoRef, caption string) error
}

type FileFetcher interface {
	Resolve(ctx context.Context, photo PhotoRef) (RemoteFile, error)
	Download(ctx context.Context, path string) ([]byte, error)
}

type Gateway interface {
	FetchCategories(ctx context.Context, chatID entity.ChatID) ([]entity.Category, error)
	CreateProduct(ctx context.Context, chatID entity.ChatID, draft entity.ProductDraft) (uint64, error)
	UploadProductImage(ctx context.Context, chatID entity.ChatID, productID uint64, image entity.ImageFile) (uint64, error)
}

type Authenticator interface {
	Login(ctx context.Context, chatID entity.ChatID, creds entity.LoginCredentials, baseURL string) error
	Has(chatID entity.ChatID) bool
	Remove(chatID entity.ChatID)
	List() []entity.ChatID
}

type Activity string

const (
	ActivityTyping      Activity = "typing"
	ActivityUploadPhoto Activity = "upload_photo"
)

// ActivityNotifier shows a chat action until the returned stop func is called.
type ActivityNotifier interface {
	StartActivity(ctx context.Context, chatID entity.ChatID, activity Activity) (stop func())
}
