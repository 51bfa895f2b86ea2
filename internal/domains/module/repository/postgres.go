package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"researchequals-backend/internal/domains/module/model"
)

type postgresModuleRepository struct {
	db *pgxpool.Pool
}

func NewPostgresModuleRepository(db *pgxpool.Pool) ModuleRepository {
	return &postgresModuleRepository{db: db}
}

// =====================================================
// PUBLICATION GRAPH
// =====================================================

func (r *postgresModuleRepository) GetForPublication(ctx context.Context, id int64) (*model.Module, error) {
	// Step 1: module row with license and type
	query := `
		SELECT m.id, m.title, m.description, m.language, m.display_color,
		       m.keywords, m.prefix, m.suffix, m.main,
		       m.published, m.published_at, m.published_where, m.url,
		       m.license_id, m.type_id, m.created_at, m.updated_at,
		       l.id, l.name, l.url, l.price_id, l.price,
		       t.id, t.name
		FROM modules m
		LEFT JOIN licenses l ON l.id = m.license_id
		JOIN module_types t ON t.id = m.type_id
		WHERE m.id = $1`

	var m model.Module
	var keywords []string
	var lic struct {
		id      *int64
		name    *string
		url     *string
		priceID *string
		price   *int64
	}
	var typ model.ModuleType

	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Title, &m.Description, &m.Language, &m.DisplayColor,
		pq.Array(&keywords), &m.Prefix, &m.Suffix, &m.Main,
		&m.Published, &m.PublishedAt, &m.PublishedWhere, &m.URL,
		&m.LicenseID, &m.TypeID, &m.CreatedAt, &m.UpdatedAt,
		&lic.id, &lic.name, &lic.url, &lic.priceID, &lic.price,
		&typ.ID, &typ.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	m.Keywords = keywords
	m.Type = &typ
	if lic.id != nil {
		m.License = &model.License{
			ID:      *lic.id,
			Name:    *lic.name,
			URL:     *lic.url,
			PriceID: lic.priceID,
			Price:   *lic.price,
		}
	}

	// Step 2: authors ordered by authorship rank
	authors, err := r.loadAuthors(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	m.Authors = authors

	// Step 3: references with their author graphs
	refs, err := r.loadReferences(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	m.References = refs

	return &m, nil
}

func (r *postgresModuleRepository) loadAuthors(ctx context.Context, moduleID int64) ([]model.ModuleAuthor, error) {
	query := `
		SELECT a.id, a.workspace_id, a.authorship_rank,
		       w.id, w.handle, w.name, w.first_name, w.last_name,
		       w.orcid, w.avatar, w.pronouns
		FROM module_authors a
		JOIN workspaces w ON w.id = a.workspace_id
		WHERE a.module_id = $1
		ORDER BY a.authorship_rank ASC`

	rows, err := r.db.Query(ctx, query, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get module authors: %w", err)
	}
	defer rows.Close()

	var authors []model.ModuleAuthor
	for rows.Next() {
		var a model.ModuleAuthor
		var w model.Workspace
		if err := rows.Scan(
			&a.ID, &a.WorkspaceID, &a.AuthorshipRank,
			&w.ID, &w.Handle, &w.Name, &w.FirstName, &w.LastName,
			&w.ORCID, &w.Avatar, &w.Pronouns,
		); err != nil {
			return nil, fmt.Errorf("failed to scan module author: %w", err)
		}
		a.Workspace = &w
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (r *postgresModuleRepository) loadReferences(ctx context.Context, moduleID int64) ([]model.Reference, error) {
	// References are module rows themselves; external works carry a raw
	// author payload instead of workspace links.
	query := `
		SELECT ref.id, ref.title, ref.published_where, ref.published_at,
		       ref.prefix, ref.suffix, ref.authors_raw
		FROM module_references mr
		JOIN modules ref ON ref.id = mr.reference_id
		WHERE mr.module_id = $1
		ORDER BY ref.id ASC`

	rows, err := r.db.Query(ctx, query, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get module references: %w", err)
	}
	defer rows.Close()

	var refs []model.Reference
	for rows.Next() {
		var ref model.Reference
		var rawAuthors []byte
		if err := rows.Scan(
			&ref.ID, &ref.Title, &ref.PublishedWhere, &ref.PublishedAt,
			&ref.Prefix, &ref.Suffix, &rawAuthors,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reference: %w", err)
		}
		if len(rawAuthors) > 0 {
			var list model.RawAuthorList
			if err := json.Unmarshal(rawAuthors, &list); err != nil {
				return nil, fmt.Errorf("failed to decode raw authors for reference %d: %w", ref.ID, err)
			}
			ref.AuthorsRaw = &list
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range refs {
		authors, err := r.loadAuthors(ctx, refs[i].ID)
		if err != nil {
			return nil, err
		}
		refs[i].Authors = authors
	}
	return refs, nil
}

// =====================================================
// PUBLISH WRITE
// =====================================================

func (r *postgresModuleRepository) MarkPublished(ctx context.Context, id int64, publishedAt time.Time, publishedWhere, url string) (*model.PublishedModule, error) {
	// Conditional write: a module already flipped by a concurrent
	// delivery is left untouched.
	query := `
		UPDATE modules
		SET published = true,
		    published_at = $2,
		    published_where = $3,
		    url = $4,
		    updated_at = NOW()
		WHERE id = $1 AND published = false
		RETURNING id`

	var updatedID int64
	err := r.db.QueryRow(ctx, query, id, publishedAt, publishedWhere, url).Scan(&updatedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing module from a lost race.
			var exists bool
			if checkErr := r.db.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM modules WHERE id = $1)`, id,
			).Scan(&exists); checkErr != nil {
				return nil, fmt.Errorf("failed to check module existence: %w", checkErr)
			}
			if exists {
				return nil, model.ErrAlreadyPublished
			}
			return nil, model.ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to mark module published: %w", err)
	}

	return r.GetPublished(ctx, updatedID)
}

func (r *postgresModuleRepository) GetPublished(ctx context.Context, id int64) (*model.PublishedModule, error) {
	query := `
		SELECT m.id, m.title, m.description, m.language, m.display_color,
		       m.keywords, m.prefix, m.suffix, m.published_at, m.url,
		       COALESCE(l.url, ''), t.name
		FROM modules m
		LEFT JOIN licenses l ON l.id = m.license_id
		JOIN module_types t ON t.id = m.type_id
		WHERE m.id = $1 AND m.published = true`

	var p model.PublishedModule
	var keywords []string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Description, &p.Language, &p.DisplayColor,
		pq.Array(&keywords), &p.Prefix, &p.Suffix, &p.PublishedAt, &p.URL,
		&p.LicenseURL, &p.TypeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get published module: %w", err)
	}
	p.Keywords = keywords
	return &p, nil
}

// =====================================================
// READ ENDPOINTS
// =====================================================

func (r *postgresModuleRepository) GetBySuffix(ctx context.Context, suffix string) (*model.Module, error) {
	query := `
		SELECT m.id, m.title, m.description, m.language, m.display_color,
		       m.keywords, m.prefix, m.suffix, m.main,
		       m.published, m.published_at, m.published_where, m.url,
		       m.license_id, m.type_id, m.created_at, m.updated_at,
		       t.id, t.name
		FROM modules m
		JOIN module_types t ON t.id = m.type_id
		WHERE m.suffix = $1 AND m.published = true`

	var m model.Module
	var keywords []string
	var typ model.ModuleType
	err := r.db.QueryRow(ctx, query, suffix).Scan(
		&m.ID, &m.Title, &m.Description, &m.Language, &m.DisplayColor,
		pq.Array(&keywords), &m.Prefix, &m.Suffix, &m.Main,
		&m.Published, &m.PublishedAt, &m.PublishedWhere, &m.URL,
		&m.LicenseID, &m.TypeID, &m.CreatedAt, &m.UpdatedAt,
		&typ.ID, &typ.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get module by suffix: %w", err)
	}
	m.Keywords = keywords
	m.Type = &typ

	authors, err := r.loadAuthors(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	m.Authors = authors
	return &m, nil
}

func (r *postgresModuleRepository) ListPublishedSince(ctx context.Context, since time.Time, limit int) ([]model.PublishedModule, error) {
	query := `
		SELECT m.id, m.title, m.description, m.language, m.display_color,
		       m.keywords, m.prefix, m.suffix, m.published_at, m.url,
		       COALESCE(l.url, ''), t.name
		FROM modules m
		LEFT JOIN licenses l ON l.id = m.license_id
		JOIN module_types t ON t.id = m.type_id
		WHERE m.published = true AND m.published_at >= $1
		ORDER BY m.published_at ASC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list published modules: %w", err)
	}
	defer rows.Close()

	var out []model.PublishedModule
	for rows.Next() {
		var p model.PublishedModule
		var keywords []string
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.Language, &p.DisplayColor,
			pq.Array(&keywords), &p.Prefix, &p.Suffix, &p.PublishedAt, &p.URL,
			&p.LicenseURL, &p.TypeName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan published module: %w", err)
		}
		p.Keywords = keywords
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresModuleRepository) GetLicenseByPriceID(ctx context.Context, priceID string) (*model.License, error) {
	query := `
		SELECT id, name, url, price_id, price
		FROM licenses
		WHERE price_id = $1`

	var l model.License
	err := r.db.QueryRow(ctx, query, priceID).Scan(&l.ID, &l.Name, &l.URL, &l.PriceID, &l.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrModuleNotFound
		}
		return nil, fmt.Errorf("failed to get license by price id: %w", err)
	}
	return &l, nil
}
