package license

// Namespace is an independent axis of identity binding. A license key may
// hold at most one bound identity per namespace, so the same key can be
// redeemed once on the game platform and once in chat without either
// redemption blocking the other.
type Namespace string

const (
	// GameAccount is a game-platform player account id.
	GameAccount Namespace = "game_account"
	// GameCreator is a game-platform creator (user or group) id.
	GameCreator Namespace = "game_creator"
	// ChatAccount is a chat-platform user id.
	ChatAccount Namespace = "chat_account"
)

// Known reports whether n is one of the defined namespaces.
func (n Namespace) Known() bool {
	switch n {
	case GameAccount, GameCreator, ChatAccount:
		return true
	}
	return false
}

// IdentityRef is a tagged identity: an opaque id inside one namespace.
type IdentityRef struct {
	Namespace Namespace `json:"namespace"`
	ID        string    `json:"id"`
}

// Binding is the persisted record for a license key. ProductID is fixed at
// creation; each namespace slot is set at most once and never changes.
type Binding struct {
	LicenseKey string               `json:"license_key"`
	ProductID  string               `json:"product_id"`
	Bindings   map[Namespace]string `json:"bindings"`
	CreatedTS  int64                `json:"created_ts"`
	UpdatedTS  int64                `json:"updated_ts"`
}

// Bound returns the identity bound in the given namespace, if any.
func (b *Binding) Bound(ns Namespace) (string, bool) {
	if b == nil || b.Bindings == nil {
		return "", false
	}
	id, ok := b.Bindings[ns]
	return id, ok
}

// Verification is the oracle's answer for one license key: whether the key
// is enabled for the product, and who purchased it.
type Verification struct {
	Enabled bool   `json:"enabled"`
	Buyer   string `json:"buyer,omitempty"`
}
