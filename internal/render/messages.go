package render

import (
	"fmt"
	"strings"

	"github.com/futig/panel-product-bot/internal/entity"
)

const (
	// Welcome messages
	MsgWelcome = `👋 Hi! I create products in your store admin panel.

/newproduct starts a new product
/changetoken forgets the saved panel address and credentials
/cancel stops the current step at any time`

	// Credentials
	MsgAskSiteURL  = `🌐 Send the address of your admin panel, for example https://panel.example.com`
	MsgAskToken    = `🔑 Send your panel API key.`
	MsgAskUsername = `👤 Send your panel username.`
	MsgAskPassword = `🔒 Send your panel password.`
	MsgLoggingIn   = `⏳ Signing in to the panel...`

	MsgCredentialsReset = `🧹 Saved panel address and credentials were removed.`

	// Product draft
	MsgAskProductName = `📦 Send the product name.`
	MsgAskPrice       = `💰 Send the price (digits only, separators are ignored).`
	MsgAskCategoryID  = `🗂 Send the id of the category for this product.`
	MsgCategoriesHead = `Available categories:`
	MsgNoCategories   = `📭 The panel has no categories. Create one in the admin panel and start again with /newproduct`

	// Image
	MsgAskImage = `🖼 Upload the product image (jpg, jpeg, png, gif or webp, up to %s).`

	// Summaries
	MsgProductCreated = `✅ Product created.
─────────────────────
Name: %s
Price: %d
Category: %s (id: %d)
🆔 Product id: %d`

	MsgProductCompleted = MsgProductCreated + `

Send /newproduct to create the next product.`

	MsgChooseAction = `What would you like to do?`

	MsgCancelled = `🚫 Product creation cancelled.`
	MsgIdle      = `Send /newproduct to create a product or /start for help.`

	// Validation errors
	ErrSiteURL          = `❌ The address must start with https:// and contain a host. Try again.`
	ErrTokenEmpty       = `❌ The API key is required and cannot be empty.`
	ErrUsernameEmpty    = `❌ The username is required and cannot be empty.`
	ErrPasswordEmpty    = `❌ The password is required and cannot be empty.`
	ErrProductNameEmpty = `❌ The product name cannot be empty.`
	ErrPrice            = `❌ The price must be a number. Try again.`
	ErrCategoryID       = `❌ The category id must be a number. Try again.`
	ErrCategoryNotFound = `❌ There is no category with id %d. Send one of the ids from the list.`
	ErrCategoryDisabled = `⛔️ Category %d is not available. Choose an available (✅) category.`
	ErrImageExpected    = `❌ Please send an image.`
	ErrImageTooLarge    = `❌ The image must not exceed %s.`
	ErrImageExtension   = `❌ Unsupported file format. Allowed formats: %s.`
	ErrImageDownload    = `❌ Could not download the image. Send it again.`
	ErrTextExpected     = `❌ Please send this as text.`
	ErrCallbackInvalid  = `❌ Unknown action`

	// Gateway errors
	ErrGeneric         = `❌ Something went wrong. Start again with /newproduct`
	ErrLoginFailed     = `❌ Could not sign in to the panel (%s). Check the address, username and password and start again with /newproduct`
	ErrNoCredentials   = `❌ No panel credentials are saved for this chat. Start again with /newproduct`
	ErrNoCSRFToken     = `❌ The panel session has no CSRF token. Sign in again with /changetoken`
	ErrNetworkIssue    = `❌ Could not reach the panel: %s`
	ErrTimeout         = `❌ The panel did not answer in time. Try again later.`
	ErrPanelRejected   = `❌ The panel rejected the request (HTTP %d): %s`
	ErrPanelResponse   = `❌ Unexpected response from the panel: %s`
)

// RenderProductCreated formats the summary sent right after product creation
func RenderProductCreated(draft entity.ProductDraft, categoryName string, productID uint64) string {
	return fmt.Sprintf(MsgProductCreated, draft.Name, draft.Price, categoryName, draft.CategoryID, productID)
}

// RenderProductCompleted formats the caption of the final product photo
func RenderProductCompleted(draft entity.ProductDraft, categoryName string, productID uint64) string {
	return fmt.Sprintf(MsgProductCompleted, draft.Name, draft.Price, categoryName, draft.CategoryID, productID)
}

func RenderAskImage(maxSize int64) string {
	return fmt.Sprintf(MsgAskImage, FormatSize(maxSize))
}

// RenderCategories renders one line per category: availability mark, id,
// name and parent.
func RenderCategories(categories []entity.Category) string {
	var sb strings.Builder
	sb.WriteString(MsgCategoriesHead)
	sb.WriteString("\n")
	for _, c := range categories {
		mark := "⛔️"
		if c.Available {
			mark = "✅"
		}
		parent := "Root"
		if c.ParentID != nil {
			parent = fmt.Sprintf("%d", *c.ParentID)
		}
		sb.WriteString(fmt.Sprintf("\n%s %4d — %s (parent: %s)", mark, c.ID, c.Name, parent))
	}
	return sb.String()
}

// FormatSize renders a byte count using the largest whole binary unit.
func FormatSize(size int64) string {
	const (
		kib = 1024
		mib = 1024 * kib
	)
	switch {
	case size >= mib && size%mib == 0:
		return fmt.Sprintf("%d MiB", size/mib)
	case size >= mib:
		return fmt.Sprintf("%.1f MiB", float64(size)/mib)
	case size >= kib:
		return fmt.Sprintf("%d KiB", size/kib)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
