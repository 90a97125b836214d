package entity

import "time"

// Chat is a durable two-party conversation between a buyer and a seller,
// optionally linked to the contract that started it. Chats are created when
// an offer is initiated and never deleted; only the last-activity fields
// change afterwards.
type Chat struct {
	ID            string    `json:"id" firestore:"id"`
	Participants  []string  `json:"participants" firestore:"participants"`
	BuyerID       string    `json:"buyer_id" firestore:"buyerId"`
	SellerID      string    `json:"seller_id" firestore:"sellerId"`
	ContractID    string    `json:"contract_id,omitempty" firestore:"contractId,omitempty"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at" firestore:"updatedAt"`
	LastMessage   string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt time.Time `json:"last_message_at" firestore:"lastMessageAt"`
	LastSenderID  string    `json:"last_sender_id,omitempty" firestore:"lastSenderId,omitempty"`
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// CounterpartOf returns the other participant relative to userID. The two
// roles are stored asymmetrically, so this picks whichever of buyer/seller
// is not the caller.
func (c *Chat) CounterpartOf(userID string) string {
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}
