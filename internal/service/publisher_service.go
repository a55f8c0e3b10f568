package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"compliance-agent-be/internal/dto"
)

// IPublisherService hands answered exchanges to the transcript pipeline.
type IPublisherService interface {
	PublishTranscript(ctx context.Context, transcript *dto.TranscriptMessage) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishTranscript(ctx context.Context, transcript *dto.TranscriptMessage) error {
	payload, err := json.Marshal(transcript)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return ps.pubSub.Publish(ps.topicName, msg)
}
