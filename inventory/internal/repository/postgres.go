package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/book-inventory/inventory/internal/errs"
	"github.com/Astemirdum/book-inventory/inventory/internal/model"
)

type postgresRepository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewPostgresRepository(db *pgxpool.Pool, log *zap.Logger) *postgresRepository {
	return &postgresRepository{
		db:  db,
		log: log.Named("repo"),
	}
}

const booksTableName = `books`

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *postgresRepository) ListBooks(ctx context.Context, page, limit int) (model.ListBooks, error) {
	query, args, err := qb.Select("id", "title", "price", "availability").
		From(booksTableName).
		OrderBy("id").
		Limit(uint64(limit)).
		Offset(uint64(offset(page, limit))).
		ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	var (
		books []model.Book
		total int
	)
	gg, gctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		rows, err := r.db.Query(gctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		books, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
		if err != nil {
			return fmt.Errorf("pgx.CollectRows: %w", err)
		}
		return nil
	})
	gg.Go(func() error {
		return r.db.QueryRow(gctx, `select count(*) from books`).Scan(&total)
	})
	if err := gg.Wait(); err != nil {
		return model.ListBooks{}, err
	}
	if books == nil {
		books = []model.Book{}
	}
	return model.ListBooks{Books: books, TotalBooks: total}, nil
}

func (r *postgresRepository) UpdatePrice(ctx context.Context, id, price string) (model.Book, error) {
	query, args, err := qb.Update(booksTableName).
		Set("price", price).
		Where(sq.Eq{"id": id}).
		Suffix("returning id, title, price, availability").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	return r.updateOne(ctx, query, args...)
}

// ToggleStock locks the row, computes the next availability and writes it
// in one transaction.
func (r *postgresRepository) ToggleStock(ctx context.Context, id string) (model.Book, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.Book{}, errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current string
	err = tx.QueryRow(ctx,
		fmt.Sprintf(`select availability from %s where id = $1 for update`, booksTableName), id,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}

	query, args, err := qb.Update(booksTableName).
		Set("availability", model.NextAvailability(current)).
		Where(sq.Eq{"id": id}).
		Suffix("returning id, title, price, availability").
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	book, err := collectBook(tx.Query(ctx, query, args...))
	if err != nil {
		return model.Book{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Book{}, errors.Wrap(err, "commit")
	}
	return book, nil
}

func (r *postgresRepository) updateOne(ctx context.Context, query string, args ...any) (model.Book, error) {
	return collectBook(r.db.Query(ctx, query, args...))
}

func collectBook(rows pgx.Rows, err error) (model.Book, error) {
	if err != nil {
		return model.Book{}, err
	}
	defer rows.Close()

	book, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		if isCheckViolation(err) {
			return model.Book{}, errs.ErrValidation
		}
		return model.Book{}, err
	}
	return book, nil
}

// InsertBooks stores the whole batch in one transaction: either every book
// is written or none is.
func (r *postgresRepository) InsertBooks(ctx context.Context, books []model.Book) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}
	ins := qb.Insert(booksTableName).Columns("id", "title", "price", "availability")
	for _, b := range books {
		ins = ins.Values(model.NewID(), b.Title, b.Price, b.Availability)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return 0, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		if isCheckViolation(err) {
			return 0, errs.ErrValidation
		}
		r.log.Error("InsertBooks", zap.Int("books", len(books)), zap.Error(err))
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, errors.Wrap(err, "commit")
	}
	return int(tag.RowsAffected()), nil
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation
}
