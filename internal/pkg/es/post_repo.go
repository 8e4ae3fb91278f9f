package es

import (
	"context"
	"errors"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/versiontype"
	"github.com/goccy/go-json"
)

const MaxSearchDepth = 400

type PostRepo interface {
	IndexPost(ctx context.Context, post *PostES) error
	DeletePost(ctx context.Context, id string) error
	Search(ctx context.Context, keyword string, from, size int) (*SearchResult, error)
}

type PostRepoImpl struct {
	client *elasticsearch.TypedClient
}

func NewPostRepo(client *elasticsearch.TypedClient) PostRepo {
	return &PostRepoImpl{client: client}
}

// IndexPost 以 updated_at 作为外部版本号写入，乱序到达的旧事件被丢弃
func (s *PostRepoImpl) IndexPost(ctx context.Context, post *PostES) error {
	version := post.UpdatedAt.UnixMilli()

	_, err := s.client.Index(PostIndex).
		Id(post.ID).
		Document(post).
		Version(strconv.FormatInt(version, 10)).
		VersionType(versiontype.External).
		Do(ctx)

	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == ConflictCode {
				return nil
			}
		}
		return err
	}

	return nil
}

func (s *PostRepoImpl) DeletePost(ctx context.Context, id string) error {
	_, err := s.client.Delete(PostIndex, id).Do(ctx)

	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == NotFoundCode {
				return nil
			}
		}
		return err
	}

	return nil
}

// Search 在标题与正文中全文检索，标题权重更高
func (s *PostRepoImpl) Search(ctx context.Context, keyword string, from, size int) (*SearchResult, error) {
	if keyword == "" || from >= MaxSearchDepth {
		return &SearchResult{Posts: []*PostES{}}, nil
	}

	fuzziness := "AUTO"
	resp, err := s.client.Search().
		Index(PostIndex).
		Query(&types.Query{
			Bool: &types.BoolQuery{
				Should: []types.Query{
					{
						MultiMatch: &types.MultiMatchQuery{
							Query:  keyword,
							Fields: []string{"title^2", "plain_content"},
						},
					},
					{
						MultiMatch: &types.MultiMatchQuery{
							Query:     keyword,
							Fields:    []string{"title", "plain_content"},
							Fuzziness: &fuzziness,
						},
					},
				},
				MinimumShouldMatch: 1,
			},
		}).
		From(from).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{Posts: make([]*PostES, 0, len(resp.Hits.Hits))}
	if resp.Hits.Total != nil {
		result.Total = resp.Hits.Total.Value
	}
	for _, hit := range resp.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var post PostES
		if err = json.Unmarshal(hit.Source_, &post); err != nil {
			continue
		}
		result.Posts = append(result.Posts, &post)
	}
	return result, nil
}
