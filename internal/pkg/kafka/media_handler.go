package kafka

import (
	"Mosaic/internal/api/dto"
	"Mosaic/internal/pkg/consts"
	"Mosaic/internal/pkg/logger"
	"Mosaic/internal/pkg/util"
	"Mosaic/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// MediaHandler 消费媒体处理完成事件，回写索引和缓存
type MediaHandler struct {
	postService service.PostService
}

func NewMediaHandler(postService service.PostService) *MediaHandler {
	return &MediaHandler{postService: postService}
}

func (s *MediaHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("media consumer setup")
	return nil
}

func (s *MediaHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("media consumer cleanup")
	return nil
}

func (s *MediaHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("media consume claim", "topic", claim.Topic(), "partition", claim.Partition())
	if err := pullMessageBatch(session, claim, s.logic); err != nil {
		log.Error("media process batch error", "err", err)
		return err
	}
	return nil
}

func (s *MediaHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	ctx = logger.WithTraceID(ctx, string(msg.Key))

	event := &dto.MediaEventDTO{}
	if err := json.Unmarshal(msg.Value, event); err != nil {
		return errors.Wrapf(ErrDropMessage, "decode media event: %v", err)
	}
	if err := util.ValidateDTO(event); err != nil {
		return errors.Wrapf(ErrDropMessage, "invalid media event: %v", err)
	}

	var err error
	switch event.Type {
	case consts.MediaEventEntryURL:
		err = s.postService.UpdateEntryURL(ctx, event.DocumentID, event.EntryID, event.MimeType, event.URL)
	case consts.MediaEventPostLinked:
		err = s.postService.AttachPostID(ctx, event.DocumentID, event.PostID)
	}
	if err == nil {
		log.InfoContext(ctx, "media event applied", "type", event.Type, "documentId", event.DocumentID)
		return nil
	}

	// 索引拒绝或参数错误时重试没有意义
	if errors.Is(err, service.ErrIndexUpdateFailed) || errors.Is(err, service.ErrParamInvalid) {
		return errors.Wrapf(ErrDropMessage, "%s %s: %v", event.Type, event.DocumentID, err)
	}
	return err
}
