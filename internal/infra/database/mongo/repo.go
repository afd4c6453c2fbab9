// Package mongo — документное хранилище пользователей и книг (MongoDB).
// Оценки лежат массивом внутри документа книги.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/EgorLis/my-books/internal/domain"
)

const (
	usersColl = "users"
	booksColl = "books"
)

type Repo struct {
	logger *log.Logger
	client *mongo.Client
	users  *mongo.Collection
	books  *mongo.Collection
}

var (
	_ domain.UsersRepo = (*Repo)(nil)
	_ domain.BooksRepo = (*Repo)(nil)
)

func New(ctx context.Context, logger *log.Logger, uri, dbName string) (*Repo, error) {
	logger.Println("connecting to mongo...")
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	db := client.Database(dbName)
	r := &Repo{
		logger: logger,
		client: client,
		users:  db.Collection(usersColl),
		books:  db.Collection(booksColl),
	}
	if err := r.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	logger.Println("mongo initialized")
	return r, nil
}

// EnsureIndexes создаёт индексы (аналог миграций для postgres).
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	r.logger.Println("ensuring indexes...")
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "emailLower", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_lower_uq"),
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	_, err = r.books.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "averageRating", Value: -1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("books_best_idx"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("books_created_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("books indexes: %w", err)
	}
	r.logger.Println("indexes ensured")
	return nil
}

func (r *Repo) Close() {
	r.logger.Println("disconnecting mongo...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Disconnect(ctx); err != nil {
		r.logger.Printf("error while disconnecting: %v", err)
		return
	}
	r.logger.Println("mongo disconnected")
}

func (r *Repo) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		r.logger.Printf("ping failed: %v", err)
		return err
	}
	return nil
}

// ---------- документы ----------

type userDoc struct {
	ID         string    `bson:"_id"`
	Email      string    `bson:"email"`
	EmailLower string    `bson:"emailLower"`
	PassHash   []byte    `bson:"passHash"`
	CreatedAt  time.Time `bson:"createdAt"`
}

type ratingDoc struct {
	UserID string `bson:"userId"`
	Grade  int    `bson:"grade"`
}

type bookDoc struct {
	ID            string      `bson:"_id"`
	UserID        string      `bson:"userId"`
	Title         string      `bson:"title"`
	Author        string      `bson:"author"`
	Year          int         `bson:"year"`
	Genre         string      `bson:"genre"`
	ImageURL      string      `bson:"imageUrl"`
	Ratings       []ratingDoc `bson:"ratings"`
	AverageRating int         `bson:"averageRating"`
	CreatedAt     time.Time   `bson:"createdAt"`
	UpdatedAt     time.Time   `bson:"updatedAt"`
}

func (d userDoc) toDomain() (domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("bad user id %q: %w", d.ID, err)
	}
	return domain.User{ID: id, Email: d.Email, PassHash: d.PassHash, CreatedAt: d.CreatedAt}, nil
}

func fromBook(b domain.Book) bookDoc {
	d := bookDoc{
		ID:            b.ID.String(),
		UserID:        b.UserID.String(),
		Title:         b.Title,
		Author:        b.Author,
		Year:          b.Year,
		Genre:         b.Genre,
		ImageURL:      b.ImageURL,
		Ratings:       make([]ratingDoc, 0, len(b.Ratings)),
		AverageRating: b.AverageRating,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	for _, rt := range b.Ratings {
		d.Ratings = append(d.Ratings, ratingDoc{UserID: rt.UserID.String(), Grade: rt.Grade})
	}
	return d
}

func (d bookDoc) toDomain() (domain.Book, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.Book{}, fmt.Errorf("bad book id %q: %w", d.ID, err)
	}
	owner, err := uuid.Parse(d.UserID)
	if err != nil {
		return domain.Book{}, fmt.Errorf("bad owner id %q: %w", d.UserID, err)
	}
	b := domain.Book{
		ID:            id,
		UserID:        owner,
		Title:         d.Title,
		Author:        d.Author,
		Year:          d.Year,
		Genre:         d.Genre,
		ImageURL:      d.ImageURL,
		Ratings:       make([]domain.Rating, 0, len(d.Ratings)),
		AverageRating: d.AverageRating,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	for _, rt := range d.Ratings {
		uid, err := uuid.Parse(rt.UserID)
		if err != nil {
			return domain.Book{}, fmt.Errorf("bad rater id %q: %w", rt.UserID, err)
		}
		b.Ratings = append(b.Ratings, domain.Rating{UserID: uid, Grade: rt.Grade})
	}
	return b, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	return err
}

// ---------- USERS ----------

func (r *Repo) CreateUser(ctx context.Context, email string, passHash []byte) (domain.User, error) {
	d := userDoc{
		ID:         uuid.NewString(),
		Email:      email,
		EmailLower: strings.ToLower(email),
		PassHash:   passHash,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	start := time.Now()
	if _, err := r.users.InsertOne(ctx, d); err != nil {
		r.logger.Printf("CreateUser insert error after %s: %v", time.Since(start), err)
		if mongo.IsDuplicateKeyError(err) {
			return domain.User{}, fmt.Errorf("%w: email already registered", domain.ErrBadParams)
		}
		return domain.User{}, err
	}
	r.logger.Printf("CreateUser ok in %s id=%s", time.Since(start), d.ID)
	return d.toDomain()
}

func (r *Repo) userBy(ctx context.Context, op string, filter bson.M) (domain.User, error) {
	start := time.Now()
	var d userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&d); err != nil {
		r.logger.Printf("%s error after %s: %v", op, time.Since(start), err)
		return domain.User{}, notFound(err, "user")
	}
	r.logger.Printf("%s ok in %s id=%s", op, time.Since(start), d.ID)
	return d.toDomain()
}

func (r *Repo) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.userBy(ctx, "UserByEmail", bson.M{"emailLower": strings.ToLower(email)})
}

func (r *Repo) UserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	return r.userBy(ctx, "UserByID", bson.M{"_id": id.String()})
}

// ---------- BOOKS ----------

func (r *Repo) find(ctx context.Context, op string, opts *options.FindOptions) ([]domain.Book, error) {
	start := time.Now()
	cur, err := r.books.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.logger.Printf("%s find error after %s: %v", op, time.Since(start), err)
		return nil, err
	}
	defer cur.Close(ctx)

	res := []domain.Book{}
	for cur.Next(ctx) {
		var d bookDoc
		if err := cur.Decode(&d); err != nil {
			r.logger.Printf("%s decode error: %v", op, err)
			return nil, err
		}
		b, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	if err := cur.Err(); err != nil {
		r.logger.Printf("%s cursor error: %v", op, err)
		return nil, err
	}
	r.logger.Printf("%s ok in %s count=%d", op, time.Since(start), len(res))
	return res, nil
}

func (r *Repo) ListBooks(ctx context.Context) ([]domain.Book, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, "ListBooks", opts)
}

func (r *Repo) BestRated(ctx context.Context, limit int) ([]domain.Book, error) {
	if limit <= 0 {
		return []domain.Book{}, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "averageRating", Value: -1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	return r.find(ctx, "BestRated", opts)
}

func (r *Repo) BookByID(ctx context.Context, id domain.BookID) (domain.Book, error) {
	start := time.Now()
	var d bookDoc
	if err := r.books.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&d); err != nil {
		r.logger.Printf("BookByID error after %s: %v", time.Since(start), err)
		return domain.Book{}, notFound(err, "book "+id.String())
	}
	return d.toDomain()
}

func (r *Repo) CreateBook(ctx context.Context, b domain.Book) (domain.Book, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	b.CreatedAt, b.UpdatedAt = now, now
	b.AverageRating = domain.AverageRating(b.Ratings)

	start := time.Now()
	if _, err := r.books.InsertOne(ctx, fromBook(b)); err != nil {
		r.logger.Printf("CreateBook insert error after %s: %v", time.Since(start), err)
		return domain.Book{}, err
	}
	if b.Ratings == nil {
		b.Ratings = []domain.Rating{}
	}
	r.logger.Printf("CreateBook ok in %s id=%s", time.Since(start), b.ID)
	return b, nil
}

func (r *Repo) UpdateBook(ctx context.Context, id domain.BookID, upd domain.BookUpdate) (domain.Book, error) {
	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Author != nil {
		set["author"] = *upd.Author
	}
	if upd.Year != nil {
		set["year"] = *upd.Year
	}
	if upd.Genre != nil {
		set["genre"] = *upd.Genre
	}
	if upd.ImageURL != nil {
		set["imageUrl"] = *upd.ImageURL
	}

	start := time.Now()
	var d bookDoc
	err := r.books.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if err != nil {
		r.logger.Printf("UpdateBook error after %s: %v", time.Since(start), err)
		return domain.Book{}, notFound(err, "book "+id.String())
	}
	r.logger.Printf("UpdateBook ok in %s id=%s", time.Since(start), id)
	return d.toDomain()
}

func (r *Repo) DeleteBook(ctx context.Context, id domain.BookID) error {
	start := time.Now()
	res, err := r.books.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		r.logger.Printf("DeleteBook error after %s: %v", time.Since(start), err)
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: book %s", domain.ErrNotFound, id)
	}
	r.logger.Printf("DeleteBook ok in %s id=%s", time.Since(start), id)
	return nil
}

// AddRating — одна атомарная операция: $ne по ratings.userId и пересчёт
// averageRating в том же update-пайплайне.
func (r *Repo) AddRating(ctx context.Context, id domain.BookID, rt domain.Rating) (domain.Book, error) {
	start := time.Now()
	filter := bson.M{"_id": id.String(), "ratings.userId": bson.M{"$ne": rt.UserID.String()}}
	update := ratingPipeline(rt, time.Now().UTC().Truncate(time.Millisecond))

	var d bookDoc
	err := r.books.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := r.books.CountDocuments(ctx, bson.M{"_id": id.String()})
		if cerr != nil {
			return domain.Book{}, cerr
		}
		if n == 0 {
			return domain.Book{}, fmt.Errorf("%w: book %s", domain.ErrNotFound, id)
		}
		return domain.Book{}, fmt.Errorf("%w: user %s", domain.ErrDuplicateRating, rt.UserID)
	}
	if err != nil {
		r.logger.Printf("AddRating error after %s: %v", time.Since(start), err)
		return domain.Book{}, err
	}

	b, err := d.toDomain()
	if err != nil {
		return domain.Book{}, err
	}
	r.logger.Printf("AddRating ok in %s id=%s avg=%d", time.Since(start), id, b.AverageRating)
	return b, nil
}

// averageRating = floor(avg + 0.5): половина от нуля, как domain.AverageRating.
// $round не подходит, он округляет к чётному.
func ratingPipeline(rt domain.Rating, now time.Time) mongo.Pipeline {
	entry := bson.D{{Key: "userId", Value: rt.UserID.String()}, {Key: "grade", Value: rt.Grade}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "ratings", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$ratings", bson.A{}}}},
				bson.A{entry},
			}}}},
			{Key: "updatedAt", Value: now},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "averageRating", Value: bson.D{{Key: "$toInt", Value: bson.D{{Key: "$floor", Value: bson.D{
				{Key: "$add", Value: bson.A{bson.D{{Key: "$avg", Value: "$ratings.grade"}}, 0.5}},
			}}}}}},
		}}},
	}
}
