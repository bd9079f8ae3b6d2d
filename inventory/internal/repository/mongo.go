package repository

import (
	"context"

	"github.com/Astemirdum/book-inventory/inventory/internal/errs"
	"github.com/Astemirdum/book-inventory/inventory/internal/model"
	"github.com/Astemirdum/book-inventory/pkg/mongodb"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type bookDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Price        string             `bson:"price"`
	Availability string             `bson:"availability"`
}

func (d bookDocument) toModel() model.Book {
	return model.Book{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Price:        d.Price,
		Availability: d.Availability,
	}
}

const toggleAttempts = 5

type mongoRepository struct {
	db  *mongodb.Client
	log *zap.Logger
}

func NewMongoRepository(db *mongodb.Client, log *zap.Logger) *mongoRepository {
	return &mongoRepository{
		db:  db,
		log: log.Named("repo"),
	}
}

func (r *mongoRepository) books(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.db.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(booksCollection), nil
}

func (r *mongoRepository) ListBooks(ctx context.Context, page, limit int) (model.ListBooks, error) {
	coll, err := r.books(ctx)
	if err != nil {
		return model.ListBooks{}, err
	}

	var (
		docs  []bookDocument
		total int64
	)
	gg, gctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		opts := options.Find().
			SetSort(bson.D{{Key: "_id", Value: 1}}).
			SetSkip(int64(offset(page, limit))).
			SetLimit(int64(limit))
		cur, err := coll.Find(gctx, bson.D{}, opts)
		if err != nil {
			return errors.Wrap(err, "find")
		}
		return errors.Wrap(cur.All(gctx, &docs), "decode")
	})
	gg.Go(func() error {
		n, err := coll.CountDocuments(gctx, bson.D{})
		if err != nil {
			return errors.Wrap(err, "count")
		}
		total = n
		return nil
	})
	if err := gg.Wait(); err != nil {
		return model.ListBooks{}, err
	}

	books := make([]model.Book, 0, len(docs))
	for _, d := range docs {
		books = append(books, d.toModel())
	}
	r.log.Debug("ListBooks", zap.Int("page", page), zap.Int("limit", limit), zap.Int("found", len(books)))
	return model.ListBooks{Books: books, TotalBooks: int(total)}, nil
}

func (r *mongoRepository) UpdatePrice(ctx context.Context, id, price string) (model.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Book{}, errs.ErrInvalidID
	}
	coll, err := r.books(ctx)
	if err != nil {
		return model.Book{}, err
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "price", Value: price}}}}
	return r.findOneAndUpdate(ctx, coll, bson.D{{Key: "_id", Value: oid}}, update)
}

// ToggleStock reads the current availability and writes the next one only if
// the stored value is still the one read. A concurrent change makes it read again.
func (r *mongoRepository) ToggleStock(ctx context.Context, id string) (model.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Book{}, errs.ErrInvalidID
	}
	coll, err := r.books(ctx)
	if err != nil {
		return model.Book{}, err
	}
	for attempt := 0; attempt < toggleAttempts; attempt++ {
		var cur bookDocument
		if err := coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&cur); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return model.Book{}, errs.ErrNotFound
			}
			return model.Book{}, errors.Wrap(err, "findOne")
		}
		filter := bson.D{
			{Key: "_id", Value: oid},
			{Key: "availability", Value: cur.Availability},
		}
		update := bson.D{{Key: "$set", Value: bson.D{
			{Key: "availability", Value: model.NextAvailability(cur.Availability)},
		}}}
		book, err := r.findOneAndUpdate(ctx, coll, filter, update)
		if errors.Is(err, errs.ErrNotFound) {
			r.log.Debug("ToggleStock: availability changed concurrently", zap.String("id", id))
			continue
		}
		return book, err
	}
	return model.Book{}, errors.Errorf("toggle stock %s: too many concurrent updates", id)
}

func (r *mongoRepository) findOneAndUpdate(ctx context.Context, coll *mongo.Collection, filter bson.D, update any) (model.Book, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bookDocument
	if err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, errors.Wrap(err, "findOneAndUpdate")
	}
	return doc.toModel(), nil
}

// InsertBooks writes all books in one ordered InsertMany call.
func (r *mongoRepository) InsertBooks(ctx context.Context, books []model.Book) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}
	coll, err := r.books(ctx)
	if err != nil {
		return 0, err
	}
	docs := make([]any, 0, len(books))
	for _, b := range books {
		docs = append(docs, bookDocument{
			Title:        b.Title,
			Price:        b.Price,
			Availability: b.Availability,
		})
	}
	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, errors.Wrap(err, "insertMany")
	}
	return len(res.InsertedIDs), nil
}
