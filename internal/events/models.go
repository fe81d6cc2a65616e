package events

import (
	"context"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayushbhandari/event-tickets/internal/validate"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Event keeps the document field names existing clients already read,
// including the capitalised counters.
type Event struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Owner        string               `bson:"owner" json:"owner"`
	Title        string               `bson:"title" json:"title" validate:"required,max=200"`
	Description  string               `bson:"description" json:"description"`
	OrganizedBy  string               `bson:"organizedBy" json:"organizedBy"`
	EventDate    *time.Time           `bson:"eventDate,omitempty" json:"eventDate,omitempty"`
	EventTime    string               `bson:"eventTime" json:"eventTime"`
	Location     string               `bson:"location" json:"location"`
	Participants int                  `bson:"Participants" json:"Participants" validate:"nonnegative"`
	Count        int                  `bson:"Count" json:"Count" validate:"nonnegative"`
	Income       float64              `bson:"Income" json:"Income" validate:"nonnegative"`
	TicketPrice  float64              `bson:"ticketPrice" json:"ticketPrice" validate:"nonnegative"`
	Quantity     int                  `bson:"Quantity" json:"Quantity" validate:"nonnegative"`
	Image        string               `bson:"image" json:"image"`
	Likes        int                  `bson:"likes" json:"likes" validate:"nonnegative"`
	LikedBy      []string             `bson:"likedBy" json:"likedBy"`
	Comment      []string             `bson:"Comment" json:"Comment"`
	BookedBy     []primitive.ObjectID `bson:"bookedBy" json:"bookedBy"`
}

// HasLiker reports whether userID is in LikedBy.
func (e *Event) HasLiker(userID string) bool {
	return slices.Contains(e.LikedBy, userID)
}

// Validate checks the schema constraints enforced at write time.
func (e *Event) Validate(ctx context.Context) error {
	return validate.Struct(ctx, e)
}

// PrepareForInsert resets server-owned fields so a new event starts with
// likes == len(likedBy) == 0.
func (e *Event) PrepareForInsert() {
	e.ID = primitive.NilObjectID
	e.Likes = 0
	e.LikedBy = []string{}
	if e.Comment == nil {
		e.Comment = []string{}
	}
	if e.BookedBy == nil {
		e.BookedBy = []primitive.ObjectID{}
	}
}

// Ticket is a free-form document. Only "_id" and "userid" have meaning to
// the server.
type Ticket map[string]any

const (
	TicketIDField   = "_id"
	TicketUserField = "userid"
)

// NewTicket copies caller fields, drops any caller-chosen _id and sets
// userid when one is given.
func NewTicket(fields map[string]any, userID string) Ticket {
	t := make(Ticket, len(fields)+1)
	for k, v := range fields {
		if k == TicketIDField {
			continue
		}
		t[k] = v
	}
	if userID != "" {
		t[TicketUserField] = userID
	}
	return t
}

// UserID returns the ticket's userid field when it is a string.
func (t Ticket) UserID() string {
	s, _ := t[TicketUserField].(string)
	return s
}

// ID returns the ticket's _id, or the zero ObjectID when unset.
func (t Ticket) ID() primitive.ObjectID {
	id, _ := t[TicketIDField].(primitive.ObjectID)
	return id
}
