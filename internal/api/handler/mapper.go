package handler

import (
	"github.com/workhive/marketplace-api/internal/core/domain"
	"github.com/workhive/marketplace-api/internal/core/ports"
)

func toSessionData(s *ports.Session, withTokens bool) sessionData {
	out := sessionData{Identity: s.Identity}
	if withTokens {
		out.AccessToken = s.Tokens.AccessToken
		out.RefreshToken = s.Tokens.RefreshToken
		out.AccessExpiresAt = &s.Tokens.AccessExpiresAt
		out.RefreshExpiresAt = &s.Tokens.RefreshExpiresAt
	}
	return out
}

func toAccountData(a *ports.Account) accountData {
	return accountData{Identity: a.Identity, Worker: a.Worker, Business: a.Business}
}

func toJobPageData(p *ports.JobPage) jobPageData {
	items := p.Items
	if items == nil {
		items = []*domain.Job{}
	}
	return jobPageData{Items: items, Total: p.Total, Page: p.Page, Limit: p.Limit}
}

func toSignedURLData(u *ports.SignedURL) signedURLData {
	return signedURLData{Key: u.Key, URL: u.URL, ExpiresAt: u.ExpiresAt}
}

func (q listJobsQuery) filter() ports.JobFilter {
	return ports.JobFilter{
		Status:     domain.JobStatus(q.Status),
		Location:   q.Location,
		Search:     q.Search,
		BusinessID: q.BusinessID,
		Page:       q.Page,
		Limit:      q.Limit,
	}
}
