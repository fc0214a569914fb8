package rest

import (
	"github.com/zhishu/website/api"
	"github.com/zhishu/website/blog/application"
	"github.com/zhishu/website/blog/domain"
)

func toAPIPost(p *domain.Post) api.Post {
	return api.Post{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		Excerpt:    p.Excerpt,
		Content:    p.Content,
		CoverImage: p.CoverImage,
		Category:   string(p.Category),
		Author: api.Author{
			Name:   p.Author.Name,
			Title:  p.Author.Title,
			Avatar: p.Author.Avatar,
		},
		CreatedAt: p.CreatedAt.UTC().Format(api.TimeFormat),
		UpdatedAt: p.UpdatedAt.UTC().Format(api.TimeFormat),
		Published: p.Published,
	}
}

func toAPIPosts(posts []*domain.Post) []api.Post {
	out := make([]api.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, toAPIPost(p))
	}
	return out
}

func optionalPost(p *domain.Post) *api.Post {
	if p == nil {
		return nil
	}
	out := toAPIPost(p)
	return &out
}

func toAPIDetail(d *application.PostDetail) api.PostDetail {
	return api.PostDetail{
		Post:    toAPIPost(d.Post),
		Prev:    optionalPost(d.Prev),
		Next:    optionalPost(d.Next),
		Related: toAPIPosts(d.Related),
	}
}

func toDomainAuthor(a *api.Author) *domain.Author {
	if a == nil {
		return nil
	}
	return &domain.Author{Name: a.Name, Title: a.Title, Avatar: a.Avatar}
}

func toDomainPatch(p api.PostPatch) domain.PostPatch {
	patch := domain.PostPatch{
		Title:      p.Title,
		Slug:       p.Slug,
		Excerpt:    p.Excerpt,
		Content:    p.Content,
		CoverImage: p.CoverImage,
		Author:     toDomainAuthor(p.Author),
		Published:  p.Published,
	}
	if p.Category != nil {
		category := domain.Category(*p.Category)
		patch.Category = &category
	}
	return patch
}
