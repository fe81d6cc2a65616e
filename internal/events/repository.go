package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayushbhandari/event-tickets/internal/apperr"
)

var (
	ErrEmailTaken         = apperr.New(apperr.ErrValidation, "Email already registered")
	ErrEventNotFound      = apperr.New(apperr.ErrNotFound, "Event not found")
	ErrLikeCounterInvalid = apperr.New(apperr.ErrValidation, "Likes counter cannot go below zero")
	ErrToggleConflict     = errors.New("like toggle did not settle")
)

// maxToggleAttempts bounds how often ToggleLike retries after both
// conditional updates missed because a concurrent toggle moved the document.
const maxToggleAttempts = 5

var now = func() time.Time { return time.Now().UTC() }

type Repository struct {
	db         *mongo.Database
	usersCol   *mongo.Collection
	eventsCol  *mongo.Collection
	ticketsCol *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	r := &Repository{
		db:         db,
		usersCol:   db.Collection("users"),
		eventsCol:  db.Collection("events"),
		ticketsCol: db.Collection("tickets"),
	}
	if err := r.EnsureIndexes(context.Background()); err != nil {
		log.Warn().Err(err).Msg("ensure indexes")
	}
	return r
}

func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.usersCol.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("users_email_unique"),
		},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	_, err = r.eventsCol.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "likedBy", Value: 1}},
			Options: options.Index().SetName("events_liked_by"),
		},
	})
	if err != nil {
		return fmt.Errorf("events indexes: %w", err)
	}

	_, err = r.ticketsCol.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: TicketUserField, Value: 1}},
			Options: options.Index().SetName("tickets_userid"),
		},
	})
	if err != nil {
		return fmt.Errorf("tickets indexes: %w", err)
	}
	return nil
}

// Ping checks that the database answers.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

func (r *Repository) CreateUser(ctx context.Context, name, email, passwordHash string) (*User, error) {
	u := &User{
		ID:        primitive.NilObjectID,
		Name:      name,
		Email:     email,
		Password:  passwordHash,
		CreatedAt: now(),
	}
	res, err := r.usersCol.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: insert user: %w", apperr.ErrUpstream, err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.findUser(ctx, bson.M{"email": email})
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findUser(ctx, bson.M{"_id": oid})
}

func (r *Repository) findUser(ctx context.Context, filter bson.M) (*User, error) {
	var u User
	err := r.usersCol.FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: find user: %w", apperr.ErrUpstream, err)
	}
	return &u, nil
}

func (r *Repository) CreateEvent(ctx context.Context, e *Event) (*Event, error) {
	e.PrepareForInsert()
	if err := e.Validate(ctx); err != nil {
		return nil, err
	}
	res, err := r.eventsCol.InsertOne(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("%w: insert event: %w", apperr.ErrUpstream, err)
	}
	e.ID = res.InsertedID.(primitive.ObjectID)
	return e, nil
}

func (r *Repository) ListEvents(ctx context.Context) ([]Event, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.eventsCol.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %w", apperr.ErrUpstream, err)
	}
	defer cur.Close(ctx)

	result := []Event{}
	for cur.Next(ctx) {
		var e Event
		if err := cur.Decode(&e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		result = append(result, e)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: list events cursor: %w", apperr.ErrUpstream, err)
	}
	return result, nil
}

// GetEvent returns nil without error when the id is malformed or unknown.
func (r *Repository) GetEvent(ctx context.Context, id string) (*Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.getEvent(ctx, oid)
}

func (r *Repository) getEvent(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	var e Event
	if err := r.eventsCol.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get event: %w", apperr.ErrUpstream, err)
	}
	return &e, nil
}

// ToggleLike adds userID to the event's likers when absent and removes it
// when present, moving likes by the same delta in the same update. Each
// branch is one conditional document update, so concurrent toggles never
// lose each other's writes.
func (r *Repository) ToggleLike(ctx context.Context, eventID, userID string) (*Event, error) {
	id, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return nil, ErrEventNotFound
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		like := bson.M{
			"$inc":  bson.M{"likes": 1},
			"$push": bson.M{"likedBy": userID},
		}
		e, err := r.conditionalUpdate(ctx, bson.M{"_id": id, "likedBy": bson.M{"$ne": userID}}, like, after)
		if err != nil || e != nil {
			return e, err
		}

		e, err = r.conditionalUpdate(ctx, bson.M{"_id": id, "likedBy": userID, "likes": bson.M{"$gt": 0}}, unlikePipeline(userID), after)
		if err != nil || e != nil {
			return e, err
		}

		current, err := r.getEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrEventNotFound
		}
		if current.HasLiker(userID) && current.Likes <= 0 {
			return nil, ErrLikeCounterInvalid
		}
		log.Ctx(ctx).Debug().
			Str("event_id", eventID).
			Int("attempt", attempt+1).
			Msg("like toggle raced, retrying")
	}
	return nil, ErrToggleConflict
}

// unlikePipeline decrements likes and drops only the first occurrence of
// userID from likedBy, so a list that already holds a duplicate stays in
// step with the counter. $pull would remove every copy.
func unlikePipeline(userID string) mongo.Pipeline {
	keep := bson.M{"$filter": bson.M{
		"input": bson.M{"$range": bson.A{0, bson.M{"$size": "$likedBy"}}},
		"as":    "j",
		"cond":  bson.M{"$ne": bson.A{"$$j", "$$i"}},
	}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "likes", Value: bson.M{"$subtract": bson.A{"$likes", 1}}},
			{Key: "likedBy", Value: bson.M{"$let": bson.M{
				"vars": bson.M{"i": bson.M{"$indexOfArray": bson.A{"$likedBy", userID}}},
				"in": bson.M{"$map": bson.M{
					"input": keep,
					"as":    "j",
					"in":    bson.M{"$arrayElemAt": bson.A{"$likedBy", "$$j"}},
				}},
			}}},
		}}},
	}
}

// conditionalUpdate returns (nil, nil) when filter matched nothing.
func (r *Repository) conditionalUpdate(ctx context.Context, filter bson.M, update any, opts *options.FindOneAndUpdateOptions) (*Event, error) {
	var e Event
	err := r.eventsCol.FindOneAndUpdate(ctx, filter, update, opts).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: toggle like: %w", apperr.ErrUpstream, err)
	}
	return &e, nil
}

func (r *Repository) CreateTicket(ctx context.Context, t Ticket) (Ticket, error) {
	doc := make(Ticket, len(t)+1)
	for k, v := range t {
		doc[k] = v
	}
	doc[TicketIDField] = primitive.NewObjectID()
	if _, err := r.ticketsCol.InsertOne(ctx, bson.M(doc)); err != nil {
		return nil, fmt.Errorf("%w: insert ticket: %w", apperr.ErrUpstream, err)
	}
	return doc, nil
}

func (r *Repository) ListTickets(ctx context.Context) ([]Ticket, error) {
	return r.findTickets(ctx, bson.M{})
}

// ListTicketsByID returns the ticket with the given id as a one-element
// slice, or an empty slice.
func (r *Repository) ListTicketsByID(ctx context.Context, id string) ([]Ticket, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return []Ticket{}, nil
	}
	return r.findTickets(ctx, bson.M{TicketIDField: oid})
}

func (r *Repository) ListTicketsByUser(ctx context.Context, userID string) ([]Ticket, error) {
	return r.findTickets(ctx, bson.M{TicketUserField: userID})
}

func (r *Repository) findTickets(ctx context.Context, filter bson.M) ([]Ticket, error) {
	cur, err := r.ticketsCol.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: find tickets: %w", apperr.ErrUpstream, err)
	}
	defer cur.Close(ctx)

	result := []Ticket{}
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode ticket: %w", err)
		}
		result = append(result, Ticket(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: find tickets cursor: %w", apperr.ErrUpstream, err)
	}
	return result, nil
}

// DeleteTicket succeeds whether or not a ticket was removed.
func (r *Repository) DeleteTicket(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err := r.ticketsCol.DeleteOne(ctx, bson.M{TicketIDField: oid}); err != nil {
		return fmt.Errorf("%w: delete ticket: %w", apperr.ErrUpstream, err)
	}
	return nil
}
