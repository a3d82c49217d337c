package conversation

import "github.com/futig/panel-product-bot/internal/entity"

// StateKind names a conversation state.
type StateKind string

const (
	KindStart               StateKind = "start"
	KindReceiveSiteURL      StateKind = "receive_site_url"
	KindReceiveToken        StateKind = "receive_token"
	KindReceiveUsername     StateKind = "receive_username"
	KindReceivePassword     StateKind = "receive_password"
	KindReceiveProductName  StateKind = "receive_product_name"
	KindReceivePrice        StateKind = "receive_price"
	KindReceiveCategoryID   StateKind = "receive_category_id"
	KindReceiveProductImage StateKind = "receive_product_image"
)

// State is the closed set of conversation states. Each value carries only
// the data collected so far and is replaced whole on every transition.
type State interface {
	Kind() StateKind
	state()
}

type Start struct{}

type ReceiveSiteURL struct{}

type ReceiveToken struct{}

type ReceiveUsername struct{}

type ReceivePassword struct {
	Username string
}

type ReceiveProductName struct{}

type ReceivePrice struct {
	Name string
}

type ReceiveCategoryID struct {
	Name  string
	Price uint64
}

type ReceiveProductImage struct {
	Draft        entity.ProductDraft
	CategoryName string
	ProductID    uint64
}

func (Start) Kind() StateKind               { return KindStart }
func (ReceiveSiteURL) Kind() StateKind      { return KindReceiveSiteURL }
func (ReceiveToken) Kind() StateKind        { return KindReceiveToken }
func (ReceiveUsername) Kind() StateKind     { return KindReceiveUsername }
func (ReceivePassword) Kind() StateKind     { return KindReceivePassword }
func (ReceiveProductName) Kind() StateKind  { return KindReceiveProductName }
func (ReceivePrice) Kind() StateKind        { return KindReceivePrice }
func (ReceiveCategoryID) Kind() StateKind   { return KindReceiveCategoryID }
func (ReceiveProductImage) Kind() StateKind { return KindReceiveProductImage }

func (Start) state()               {}
func (ReceiveSiteURL) state()      {}
func (ReceiveToken) state()        {}
func (ReceiveUsername) state()     {}
func (ReceivePassword) state()     {}
func (ReceiveProductName) state()  {}
func (ReceivePrice) state()        {}
func (ReceiveCategoryID) state()   {}
func (ReceiveProductImage) state() {}

// AllKinds lists every state kind in workflow order.
func AllKinds() []StateKind {
	return []StateKind{
		KindStart,
		KindReceiveSiteURL,
		KindReceiveToken,
		KindReceiveUsername,
		KindReceivePassword,
		KindReceiveProductName,
		KindReceivePrice,
		KindReceiveCategoryID,
		KindReceiveProductImage,
	}
}
