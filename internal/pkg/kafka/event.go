package kafka

import (
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

const (
	PostUpserted = "upsert"
	PostDeleted  = "delete"
)

// PostEvent 文章变更事件，消费方按 PostID 回源读取最新状态
type PostEvent struct {
	Type       string    `json:"type"`
	PostID     string    `json:"post_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// VideoViewEvent 视频播放事件
type VideoViewEvent struct {
	VideoID    string    `json:"video_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// decode 将 kafka 消息反序列化为事件结构体
func decode[T any](msg *sarama.ConsumerMessage) (*T, error) {
	var evt T
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return nil, err
	}
	return &evt, nil
}
