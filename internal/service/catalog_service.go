package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
	"github.com/Ahammedsa/server-site-fitenss/internal/repository"
)

// CatalogService serves trainer profiles and classes.
type CatalogService struct {
	observer
	trainers repository.TrainerRepository
	classes  repository.ClassRepository
	node     *snowflake.Node
}

// NewCatalogService wires dependencies.
func NewCatalogService(trainers repository.TrainerRepository, classes repository.ClassRepository, node *snowflake.Node, logger *zap.Logger) *CatalogService {
	return &CatalogService{observer: newObserver(logger), trainers: trainers, classes: classes, node: node}
}

func (s *CatalogService) ListTrainers(ctx context.Context) ([]domain.Document, error) {
	ctx, span := s.startSpan(ctx, "CatalogService.ListTrainers")
	defer span.End()

	docs, err := s.trainers.List(ctx)
	if err != nil {
		return nil, fail(span, asStorage("list trainers", err))
	}
	return docs, nil
}

func (s *CatalogService) GetTrainer(ctx context.Context, id string) (domain.Document, error) {
	ctx, span := s.startSpan(ctx, "CatalogService.GetTrainer")
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return nil, fail(span, fmt.Errorf("%w: id is required", domain.ErrValidation))
	}
	doc, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return nil, fail(span, asStorage("get trainer", err))
	}
	return doc, nil
}

func (s *CatalogService) AddTrainer(ctx context.Context, doc domain.Document) (domain.WriteResult, error) {
	ctx, span := s.startSpan(ctx, "CatalogService.AddTrainer")
	defer span.End()

	res, err := s.trainers.Insert(ctx, s.withID(doc))
	if err != nil {
		return domain.WriteResult{}, fail(span, asStorage("add trainer", err))
	}
	s.audit("trainer.created", "trainer_id", res.InsertedID)
	return res, nil
}

// ListClasses returns all classes, or one page when page.Limit is set.
func (s *CatalogService) ListClasses(ctx context.Context, page domain.Page) ([]domain.Document, error) {
	ctx, span := s.startSpan(ctx, "CatalogService.ListClasses")
	defer span.End()

	if page.Skip < 0 || page.Limit < 0 {
		return nil, fail(span, fmt.Errorf("%w: page and size must not be negative", domain.ErrValidation))
	}
	docs, err := s.classes.List(ctx, page)
	if err != nil {
		return nil, fail(span, asStorage("list classes", err))
	}
	return docs, nil
}

func (s *CatalogService) CountClasses(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "CatalogService.CountClasses")
	defer span.End()

	n, err := s.classes.Count(ctx)
	if err != nil {
		return 0, fail(span, asStorage("count classes", err))
	}
	return n, nil
}

func (s *CatalogService) AddClass(ctx context.Context, doc domain.Document) (domain.WriteResult, error) {
	ctx, span := s.startSpan(ctx, "CatalogService.AddClass")
	defer span.End()

	res, err := s.classes.Insert(ctx, s.withID(doc))
	if err != nil {
		return domain.WriteResult{}, fail(span, asStorage("add class", err))
	}
	s.audit("class.created", "class_id", res.InsertedID)
	return res, nil
}

func (s *CatalogService) withID(doc domain.Document) domain.Document {
	out := doc.Clone()
	if out.ID() == "" {
		out[domain.FieldID] = s.node.Generate().String()
	}
	return out
}
