package drawing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/webcad/webcad/backend-go/internal/db/dbgen"
	"github.com/webcad/webcad/backend-go/internal/document"
	"github.com/webcad/webcad/backend-go/internal/editor"
	"github.com/webcad/webcad/backend-go/internal/render"
	"github.com/webcad/webcad/backend-go/internal/scene"
	"github.com/webcad/webcad/backend-go/internal/typeid"
)

var (
	ErrNotFound  = errors.New("drawing not found")
	ErrForbidden = errors.New("forbidden")
	ErrTooLarge  = errors.New("drawing too large to export")
)

// Store is the slice of the query layer the service needs.
type Store interface {
	CreateDrawing(ctx context.Context, arg dbgen.CreateDrawingParams) (dbgen.Drawing, error)
	GetDrawing(ctx context.Context, id string) (dbgen.Drawing, error)
	ListDrawingsForOwner(ctx context.Context, ownerID string) ([]dbgen.Drawing, error)
	DeleteDrawing(ctx context.Context, id string) error
	TouchDrawing(ctx context.Context, id string) error
	CreateNextSnapshot(ctx context.Context, arg dbgen.CreateNextSnapshotParams) (dbgen.Snapshot, error)
	GetLatestSnapshot(ctx context.Context, drawingID string) (dbgen.Snapshot, error)
	GetSnapshotByVersion(ctx context.Context, arg dbgen.GetSnapshotByVersionParams) (dbgen.Snapshot, error)
	ListSnapshots(ctx context.Context, drawingID string) ([]dbgen.ListSnapshotsRow, error)
}

type Service struct {
	store     Store
	opts      editor.Options
	maxPixels int
}

func NewService(store Store, opts editor.Options, maxPixels int) *Service {
	return &Service{store: store, opts: opts, maxPixels: maxPixels}
}

type Drawing struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Snapshot struct {
	ID        string          `json:"id"`
	Version   int             `json:"version"`
	Document  json.RawMessage `json:"document,omitempty"`
	CreatedAt string          `json:"createdAt"`
}

// Create makes an empty drawing owned by ownerID. A zero size takes the
// configured canvas size.
func (s *Service) Create(ctx context.Context, name, ownerID string, width, height int) (*Drawing, error) {
	if width <= 0 || height <= 0 {
		width, height = s.opts.Width, s.opts.Height
	}
	drawingID := typeid.Drawing.New()

	dbDrawing, err := s.store.CreateDrawing(ctx, dbgen.CreateDrawingParams{
		ID:      drawingID,
		Name:    name,
		OwnerID: ownerID,
		Width:   int32(width),
		Height:  int32(height),
	})
	if err != nil {
		return nil, fmt.Errorf("create drawing: %w", err)
	}

	empty, err := document.Encode(scene.New())
	if err != nil {
		return nil, err
	}
	if _, err := s.nextSnapshot(ctx, drawingID, empty); err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return toDrawing(dbDrawing), nil
}

func (s *Service) Get(ctx context.Context, drawingID, userID string) (*Drawing, error) {
	d, err := s.owned(ctx, drawingID, userID)
	if err != nil {
		return nil, err
	}
	return toDrawing(d), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Drawing, error) {
	dbDrawings, err := s.store.ListDrawingsForOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}

	drawings := make([]Drawing, len(dbDrawings))
	for i, d := range dbDrawings {
		drawings[i] = *toDrawing(d)
	}
	return drawings, nil
}

func (s *Service) Delete(ctx context.Context, drawingID, userID string) error {
	if _, err := s.owned(ctx, drawingID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteDrawing(ctx, drawingID); err != nil {
		return fmt.Errorf("delete drawing: %w", err)
	}
	return nil
}

// snapshotAttempts bounds how often nextSnapshot retries a version number
// taken by a concurrent save.
const snapshotAttempts = 3

// nextSnapshot appends doc as the drawing's next version. The version is
// computed inside the insert, so two concurrent saves can pick the same one
// and the loser fails the (drawing_id, version) unique key; it retries.
func (s *Service) nextSnapshot(ctx context.Context, drawingID string, doc []byte) (dbgen.Snapshot, error) {
	var err error
	for range snapshotAttempts {
		var snap dbgen.Snapshot
		snap, err = s.store.CreateNextSnapshot(ctx, dbgen.CreateNextSnapshotParams{
			ID:        typeid.Snapshot.New(),
			DrawingID: drawingID,
			Document:  doc,
		})
		if !isUniqueViolation(err) {
			return snap, err
		}
	}
	return dbgen.Snapshot{}, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Save stores data as the next snapshot. Drawings that do not decode are
// rejected and the latest snapshot stays as it was.
func (s *Service) Save(ctx context.Context, drawingID, userID string, data []byte) (*Snapshot, error) {
	if _, err := s.owned(ctx, drawingID, userID); err != nil {
		return nil, err
	}
	sc, err := decodeScene(data)
	if err != nil {
		return nil, err
	}
	canonical, err := document.Encode(sc)
	if err != nil {
		return nil, err
	}

	snap, err := s.nextSnapshot(ctx, drawingID, canonical)
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	if err := s.store.TouchDrawing(ctx, drawingID); err != nil {
		return nil, fmt.Errorf("touch drawing: %w", err)
	}
	return toSnapshot(snap, false), nil
}

func (s *Service) Latest(ctx context.Context, drawingID, userID string) (*Snapshot, error) {
	if _, err := s.owned(ctx, drawingID, userID); err != nil {
		return nil, err
	}
	snap, err := s.store.GetLatestSnapshot(ctx, drawingID)
	if err != nil {
		return nil, notFound(err, "get snapshot")
	}
	return toSnapshot(snap, true), nil
}

func (s *Service) Version(ctx context.Context, drawingID, userID string, version int) (*Snapshot, error) {
	if _, err := s.owned(ctx, drawingID, userID); err != nil {
		return nil, err
	}
	snap, err := s.store.GetSnapshotByVersion(ctx, dbgen.GetSnapshotByVersionParams{
		DrawingID: drawingID,
		Version:   int32(version),
	})
	if err != nil {
		return nil, notFound(err, "get snapshot")
	}
	return toSnapshot(snap, true), nil
}

func (s *Service) History(ctx context.Context, drawingID, userID string) ([]Snapshot, error) {
	if _, err := s.owned(ctx, drawingID, userID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListSnapshots(ctx, drawingID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	out := make([]Snapshot, len(rows))
	for i, r := range rows {
		out[i] = Snapshot{
			ID:        r.ID,
			Version:   int(r.Version),
			CreatedAt: r.CreatedAt.Time.Format("2006-01-02T15:04:05Z"),
		}
	}
	return out, nil
}

// ExportPNG renders the latest snapshot at the drawing's canvas size.
func (s *Service) ExportPNG(ctx context.Context, drawingID, userID string, w io.Writer) error {
	d, err := s.owned(ctx, drawingID, userID)
	if err != nil {
		return err
	}
	width, height := int(d.Width), int(d.Height)
	if s.maxPixels > 0 && width*height > s.maxPixels {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, width, height)
	}
	snap, err := s.store.GetLatestSnapshot(ctx, drawingID)
	if err != nil {
		return notFound(err, "get snapshot")
	}
	sc, err := decodeScene(snap.Document)
	if err != nil {
		return fmt.Errorf("stored drawing %s: %w", drawingID, err)
	}

	img, err := render.RenderImage(sc, width, height, render.Options{
		Tolerance:  s.opts.Tolerance,
		Background: s.opts.Background,
	}, 1)
	if err != nil {
		return err
	}
	return img.WritePNG(w)
}

// owned loads a drawing and checks that userID owns it.
func (s *Service) owned(ctx context.Context, drawingID, userID string) (dbgen.Drawing, error) {
	if err := typeid.Drawing.Check(drawingID); err != nil {
		return dbgen.Drawing{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	d, err := s.store.GetDrawing(ctx, drawingID)
	if err != nil {
		return dbgen.Drawing{}, notFound(err, "get drawing")
	}
	if d.OwnerID != userID {
		return dbgen.Drawing{}, ErrForbidden
	}
	return d, nil
}

func decodeScene(data []byte) (*scene.Scene, error) {
	sc := scene.New()
	if err := document.Load(sc, data); err != nil {
		return nil, err
	}
	return sc, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toDrawing(d dbgen.Drawing) *Drawing {
	return &Drawing{
		ID:        d.ID,
		Name:      d.Name,
		OwnerID:   d.OwnerID,
		Width:     int(d.Width),
		Height:    int(d.Height),
		CreatedAt: d.CreatedAt.Time.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: d.UpdatedAt.Time.Format("2006-01-02T15:04:05Z"),
	}
}

func toSnapshot(s dbgen.Snapshot, withDocument bool) *Snapshot {
	out := &Snapshot{
		ID:        s.ID,
		Version:   int(s.Version),
		CreatedAt: s.CreatedAt.Time.Format("2006-01-02T15:04:05Z"),
	}
	if withDocument {
		out.Document = s.Document
	}
	return out
}
