package conversation

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/panel-product-bot/internal/entity"
	"github.com/futig/panel-product-bot/internal/pkg/validator"
	"github.com/futig/panel-product-bot/internal/render"
)

const fallbackImageName = "image.jpg"

func (e *Engine) command(ctx context.Context, chatID entity.ChatID, current State, ev Event) (State, error) {
	switch ev.Command {
	case CommandStart:
		e.say(ctx, chatID, render.MsgWelcome)
		return Start{}, nil
	case CommandCancel:
		e.say(ctx, chatID, render.MsgCancelled)
		return Start{}, nil
	case CommandResetCredentials:
		e.resetCredentials(chatID)
		ctxzap.Info(ctx, "credentials reset")
		e.say(ctx, chatID, render.MsgCredentialsReset)
		e.say(ctx, chatID, render.MsgAskSiteURL)
		return ReceiveSiteURL{}, nil
	case CommandBeginWorkflow:
		return e.begin(ctx, chatID), nil
	default:
		return current, invalid(render.MsgIdle, fmt.Errorf("unknown command %q", ev.Command))
	}
}

// begin skips the steps whose data is already stored for the chat.
func (e *Engine) begin(ctx context.Context, chatID entity.ChatID) State {
	if !e.sites.Has(chatID) {
		e.say(ctx, chatID, render.MsgAskSiteURL)
		return ReceiveSiteURL{}
	}
	if !e.hasCredentials(chatID) {
		return e.askCredentials(ctx, chatID)
	}
	e.say(ctx, chatID, render.MsgAskProductName)
	return ReceiveProductName{}
}

func (e *Engine) hasCredentials(chatID entity.ChatID) bool {
	return e.tokens.Has(chatID) || e.sessions.Has(chatID)
}

func (e *Engine) askCredentials(ctx context.Context, chatID entity.ChatID) State {
	if e.cfg.CredentialMode == entity.CredentialModeSession {
		e.say(ctx, chatID, render.MsgAskUsername)
		return ReceiveUsername{}
	}
	e.say(ctx, chatID, render.MsgAskToken)
	return ReceiveToken{}
}

func (e *Engine) resetCredentials(chatID entity.ChatID) {
	e.sites.Remove(chatID)
	e.tokens.Remove(chatID)
	e.sessions.Remove(chatID)
}

func (e *Engine) idle(ctx context.Context, chatID entity.ChatID, _ State, _ Event) (State, error) {
	e.say(ctx, chatID, render.MsgIdle)
	return Start{}, nil
}

func (e *Engine) unexpectedInput(_ context.Context, _ entity.ChatID, current State, ev Event) (State, error) {
	err := fmt.Errorf("%s input in state %s", ev.Kind, current.Kind())
	if current.Kind() == KindReceiveProductImage {
		return current, invalid(render.ErrImageExpected, err)
	}
	return current, invalid(render.ErrTextExpected, err)
}

func (e *Engine) receiveSiteURL(ctx context.Context, chatID entity.ChatID, current State, ev Event) (State, error) {
	site, err := validator.ValidateSiteURL(ev.Text)
	if err != nil {
		return current, invalid(render.ErrSiteURL, err)
	}

	// Credentials belong to the previous address.
	e.tokens.Remove(chatID)
	e.sessions.Remove(chatID)
	e.sites.Set(chatID, entity.SiteConfig{ChatID: chatID, BaseURL: site})
	ctxzap.Info(ctx, "panel address stored", zap.String("site", site))

	return e.askCredentials(ctx, chatID), nil
}

func (e *Engine) receiveToken(ctx context.Context, chatID entity.ChatID, current State, ev Event) (State, error) {
	token, err := validator.ValidateToken(ev.Text)
	if err != nil {
		return current, invalid(render.ErrTokenEmpty, err)
	}

	e.tokens.Set(chatID, entity.APICredential{ChatID: chatID, Token: token})
	ctxzap.Info(ctx, "api key stored")

	e.say(ctx, chatID, render.MsgAskProductName)
	return ReceiveProductName{}, nil
}

func (e *Engine) receiveUsername(ctx context.Context, chatID entity.ChatID, current State, ev Event) (State, error) {
	username, err := validator.ValidateUsername(ev.Text)
	if err != nil {
		return current, invalid(render.ErrUsernameEmpty, err)
	}

	e.say(ctx, chatID, render.MsgAskPassword)
	return ReceivePassword{Username: username}, nil
}

func (e *Engine) receivePassword(ctx context.Context, chatID entity.ChatID, current State, ev Event) (State, error) {
	st := current.(ReceivePassword)

	password, err := validator.ValidatePassword(ev.Text)
	if err != nil {
		return current, invalid(render.ErrPasswordEmpty, err)
	}

	site, ok := e.sites.Get(chatID)
	if !ok {
		return Start{}, entity.ErrNoSite
	}

	e.say(ctx, chatID, render.MsgLoggingIn)
	stop := e.startActivity(ctx, chatID, ActivityTyping)
	err = e.sessions.Login(ctx, chatID, entity.LoginCredentials{Username: st.Username, Password: password}, site.BaseURL)
	stop()
	if err != nil {
		return Start{}, err
	}

	e.say(ctx, chatID, render.MsgAskProductName)
	return ReceiveProductName{}, nil
}

func (e *Engine) receiveProductName(ctx context.Context, chatID entity.ChatID, current State, ev Event) (State, error) {
	name, err := validator.ValidateProductName(ev.Text)
	if err != nil {
		return current, invalid(render.ErrProductNameEmpty, err)
	}

	e.say(ctx, chatID, render.MsgAskPrice)
	return ReceivePrice{Name: name}, nil
}

func (e *Engine) receivePrice(ctx context.Context, chatID entity.ChatID, current State, ev Event) (State, error) {
	st := current.(ReceivePrice)

	price, err := validator.ParsePrice(ev.Text)
	if err != nil {
		return current, invalid(render.ErrPrice, err)
	}

	categories, err := e.fetchCategories(ctx, chatID)
	if err != nil {
		return Start{}, err
	}
	if len(categories) == 0 {
		e.say(ctx, chatID, render.MsgNoCategories)
		return Start{}, nil
	}

	e.say(ctx, chatID, render.RenderCategories(categories))
	e.say(ctx, chatID, render.MsgAskCategoryID)
	return ReceiveCategoryID{Name: st.Name, Price: price}, nil
}

// receiveCategoryID validates the id against a fresh listing, the one shown
// to the user may be stale.
func (e *Engine) receiveCategoryID(ctx context.Context, chatID entity.ChatID, current State, ev Event) (State, error) {
	st := current.(ReceiveCategoryID)

	id, err := validator.ParseCategoryID(ev.Text)
	if err != nil {
		return current, invalid(render.ErrCategoryID, err)
	}

	categories, err := e.fetchCategories(ctx, chatID)
	if err != nil {
		return Start{}, err
	}

	category, ok := entity.FindCategory(categories, id)
	if !ok {
		return current, invalid(fmt.Sprintf(render.ErrCategoryNotFound, id), fmt.Errorf("category %d not found", id))
	}
	if !category.Available {
		return current, invalid(fmt.Sprintf(render.ErrCategoryDisabled, id), fmt.Errorf("category %d unavailable", id))
	}

	draft := entity.ProductDraft{Name: st.Name, Price: st.Price, CategoryID: category.ID}

	stop := e.startActivity(ctx, chatID, ActivityTyping)
	productID, err := e.gateway.CreateProduct(ctx, chatID, draft)
	stop()
	if err != nil {
		return Start{}, err
	}

	e.say(ctx, chatID, render.RenderProductCreated(draft, category.Name, productID))
	e.say(ctx, chatID, render.RenderAskImage(e.images.MaxFileSize()))

	return ReceiveProductImage{Draft: draft, CategoryName: category.Name, ProductID: productID}, nil
}

func (e *Engine) receiveProductImage(ctx context.Context, chatID entity.ChatID, current State, ev Event) (State, error) {
	st := current.(ReceiveProductImage)

	if ev.Photo == nil || ev.Photo.FileID == "" {
		return current, invalid(render.ErrImageExpected, errors.New("event has no photo"))
	}
	photo := *ev.Photo

	// Declared metadata is checked before anything is fetched.
	if photo.FileName != "" || photo.Size > 0 {
		name := photo.FileName
		if name == "" {
			name = fallbackImageName
		}
		if err := e.validateImage(name, photo.Size); err != nil {
			return current, err
		}
	}

	remote, err := e.files.Resolve(ctx, photo)
	if err != nil {
		ctxzap.Warn(ctx, "failed to resolve image", zap.Error(err))
		return current, invalid(render.ErrImageDownload, err)
	}

	filename := imageFilename(photo, remote)
	size := max(remote.Size, photo.Size)
	if err := e.validateImage(filename, size); err != nil {
		return current, err
	}

	content, err := e.files.Download(ctx, remote.Path)
	if errors.Is(err, entity.ErrFileTooLarge) {
		return current, invalid(fmt.Sprintf(render.ErrImageTooLarge, render.FormatSize(e.images.MaxFileSize())), err)
	}
	if err != nil {
		ctxzap.Warn(ctx, "failed to download image", zap.Error(err))
		return current, invalid(render.ErrImageDownload, err)
	}
	if err := e.validateImage(filename, int64(len(content))); err != nil {
		return current, err
	}

	stop := e.startActivity(ctx, chatID, ActivityUploadPhoto)
	imageID, err := e.gateway.UploadProductImage(ctx, chatID, st.ProductID, entity.ImageFile{Filename: filename, Content: content})
	stop()
	if err != nil {
		return Start{}, err
	}

	ctxzap.Info(ctx, "product completed", zap.Uint64("product_id", st.ProductID), zap.Uint64("image_id", imageID))

	summary := render.RenderProductCompleted(st.Draft, st.CategoryName, st.ProductID)
	if err := e.replier.SendPhoto(ctx, chatID, photo, summary); err != nil {
		ctxzap.Warn(ctx, "failed to send summary photo, falling back to text", zap.Error(err))
		e.say(ctx, chatID, summary)
	}

	return Start{}, nil
}

func (e *Engine) validateImage(filename string, size int64) error {
	err := e.images.Validate(filename, size)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, entity.ErrFileTooLarge):
		return invalid(fmt.Sprintf(render.ErrImageTooLarge, render.FormatSize(e.images.MaxFileSize())), err)
	case errors.Is(err, entity.ErrInvalidExtension):
		return invalid(fmt.Sprintf(render.ErrImageExtension, e.images.AllowedList()), err)
	default:
		return invalid(render.ErrImageExpected, err)
	}
}

func (e *Engine) fetchCategories(ctx context.Context, chatID entity.ChatID) ([]entity.Category, error) {
	stop := e.startActivity(ctx, chatID, ActivityTyping)
	defer stop()
	return e.gateway.FetchCategories(ctx, chatID)
}

// imageFilename prefers the uploaded document name, then the transport path.
func imageFilename(photo PhotoRef, remote RemoteFile) string {
	if photo.FileName != "" {
		return photo.FileName
	}
	if base := path.Base(remote.Path); base != "." && base != "/" && base != "" {
		return base
	}
	return fallbackImageName
}
