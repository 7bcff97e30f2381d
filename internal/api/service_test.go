// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/policy-engine/internal/artifact"
	"github.com/pdiddy/policy-engine/internal/citation"
	"github.com/pdiddy/policy-engine/internal/index"
	"github.com/pdiddy/policy-engine/internal/metrics"
	"github.com/pdiddy/policy-engine/pkg/types"
)

const amlText = `第一章 总则
第一条 为了预防洗钱活动，维护金融秩序，制定本法。
第二条 本法所称反洗钱，是指为了预防洗钱活动，依照本法规定采取相关措施的行为。
第三条 在中华人民共和国境内设立的金融机构应当依法采取预防、监控措施。
金融机构应当建立健全客户身份识别制度。
第二章 反洗钱监督管理
第四条 国务院反洗钱行政主管部门负责全国的反洗钱监督管理工作。
第五条 对依法履行反洗钱职责或者义务获得的客户身份资料和交易信息，应当予以保密：
（一）不得向任何单位和个人提供；
（二）不得用于其他用途。`

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func testArtifacts() []types.Artifact {
	return []types.Artifact{
		{
			Title:            "中华人民共和国反洗钱法",
			SourcePath:       "laws/aml.html",
			IssuingAuthority: "全国人民代表大会常务委员会",
			Status:           types.StatusValid,
			LawLevel:         "法律",
			EffectiveAt:      date(2007, 1, 1),
			Text:             amlText,
		},
		{
			Title:            "金融机构反洗钱规定",
			SourcePath:       "rules/aml-fi.html",
			IssuingAuthority: "中国人民银行",
			Status:           types.StatusRepealed,
			EffectiveAt:      date(2007, 1, 1),
			Text:             "第一条 为了预防洗钱活动，规范反洗钱监督管理行为，制定本规定。\n第二条 本规定适用于金融机构。",
		},
		{
			Title:            "支付机构管理办法",
			SourcePath:       "rules/pay-2021.html",
			IssuingAuthority: "中国人民银行",
			Status:           types.StatusValid,
			EffectiveAt:      date(2021, 7, 1),
			Text:             "第一条 支付机构应当遵守反洗钱规定。",
		},
		{
			Title:       "支付机构管理办法",
			SourcePath:  "rules/pay-2010.html",
			Status:      types.StatusRepealed,
			EffectiveAt: date(2010, 9, 1),
			Text:        "第一条 支付机构应当依法经营。",
		},
		{
			Title:      "客户尽职调查指引",
			SourcePath: "guides/cdd-a.html",
			Text:       "第一条 金融机构应当开展客户尽职调查。",
		},
		{
			Title:      "客户尽职调查指引",
			SourcePath: "guides/cdd-b.html",
			Text:       "第一条 金融机构应当识别受益所有人。",
		},
	}
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	holder := index.NewHolder(index.Build(testArtifacts(), index.Options{Generation: 1}))
	return NewService(holder, opts)
}

func TestLookupClauseByTitleAndItem(t *testing.T) {
	svc := newTestService(t, Options{})
	resp, err := svc.LookupClause(context.Background(), ClauseRequest{Title: "反洗钱法", Item: "第三条第二款"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	r := resp.Results[0]
	assert.Equal(t, StatusResolved, r.Status)
	assert.NoError(t, r.Err())
	require.NotNil(t, r.Policy)
	assert.Equal(t, "中华人民共和国反洗钱法", r.Policy.Title)
	assert.Equal(t, ClauseQuery{Title: "反洗钱法", Clause: "第三条第二款"}, r.Query)
	assert.Equal(t, "金融机构应当建立健全客户身份识别制度。", r.ClauseText)
	require.Len(t, r.Matches, 1)
	assert.Equal(t, types.LevelParagraph, r.Matches[0].Level)
	assert.Equal(t, uint64(1), resp.Generation)
}

func TestLookupClauseScenario(t *testing.T) {
	// A short title and the full title reach the same policy, and a
	// multi-clause citation keeps citation order.
	svc := newTestService(t, Options{})
	ctx := context.Background()

	short, err := svc.LookupClause(ctx, ClauseRequest{Key: "《反洗钱法》第三条、第五条第二项"})
	require.NoError(t, err)
	full, err := svc.LookupClause(ctx, ClauseRequest{Title: "中华人民共和国反洗钱法", Item: "第三条"})
	require.NoError(t, err)

	require.Len(t, short.Results, 2)
	assert.Equal(t, full.Results[0].Policy.ID, short.Results[0].Policy.ID)
	assert.Equal(t, full.Results[0].ClauseText, short.Results[0].ClauseText)
	assert.Contains(t, short.Results[0].ClauseText, "第三条")
	assert.Contains(t, short.Results[0].ClauseText, "客户身份识别制度")

	assert.Equal(t, StatusResolved, short.Results[1].Status)
	assert.Equal(t, "（二）不得用于其他用途。", short.Results[1].ClauseText)
}

func TestLookupClauseStatuses(t *testing.T) {
	svc := newTestService(t, Options{})
	resp, err := svc.LookupClause(context.Background(), ClauseRequest{
		Keys: []string{
			"《反洗钱法》第九十九条",
			"《支付机构管理办法》第一条",
			"《区块链信息服务管理规定》第一条",
			"《客户尽职调查指引》第一条",
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 4)

	notFound := resp.Results[0]
	assert.Equal(t, StatusClauseNotFound, notFound.Status)
	assert.ErrorIs(t, notFound.Err(), ErrClauseNotFound)
	assert.NotNil(t, notFound.Policy)
	assert.Empty(t, notFound.ClauseText)

	// Two versions under one title: the newer one is picked.
	versioned := resp.Results[1]
	assert.Equal(t, StatusResolved, versioned.Status)
	require.NotNil(t, versioned.Policy)
	assert.Equal(t, index.PolicyIDFor("支付机构管理办法", "rules/pay-2021.html"), versioned.Policy.ID)
	assert.Contains(t, versioned.ClauseText, "支付机构应当遵守反洗钱规定。")

	missing := resp.Results[2]
	assert.Equal(t, StatusTitleNotFound, missing.Status)
	assert.ErrorIs(t, missing.Err(), ErrTitleNotFound)

	ambiguous := resp.Results[3]
	assert.Equal(t, StatusTitleAmbiguous, ambiguous.Status)
	assert.ErrorIs(t, ambiguous.Err(), ErrTitleAmbiguous)
	assert.Len(t, ambiguous.Candidates, 2)
	assert.Nil(t, ambiguous.Policy)
	assert.Empty(t, ambiguous.ClauseText)
}

func TestLookupClauseWholeDocument(t *testing.T) {
	svc := newTestService(t, Options{})
	resp, err := svc.LookupClause(context.Background(), ClauseRequest{Key: "《金融机构反洗钱规定》"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, StatusResolved, resp.Results[0].Status)
	assert.Contains(t, resp.Results[0].ClauseText, "本规定适用于金融机构")
}

func TestLookupClauseInvalid(t *testing.T) {
	svc := newTestService(t, Options{})
	for _, req := range []ClauseRequest{
		{},
		{Title: "反洗钱法"},
		{Item: "第三条"},
		{Key: "第三条"},
		{Keys: []string{"  "}},
	} {
		_, err := svc.LookupClause(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidRequest, "%+v", req)
	}

	_, err := svc.LookupClause(context.Background(), ClauseRequest{Key: "第三条"})
	var perr *citation.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestGetPolicy(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	resp, err := svc.GetPolicy(ctx, PolicyRequest{Title: "反洗钱法"})
	require.NoError(t, err)
	require.NotNil(t, resp.Policy)
	assert.Nil(t, resp.Outline)
	assert.Empty(t, resp.Text)
	require.NotNil(t, resp.Match)
	assert.Equal(t, "containment", string(resp.Match.Stage))

	byID, err := svc.GetPolicy(ctx, PolicyRequest{ID: string(resp.Policy.ID), Include: []string{"outline,text"}})
	require.NoError(t, err)
	assert.Nil(t, byID.Policy)
	assert.Equal(t, amlText, byID.Text)
	require.NotNil(t, byID.Outline)
	assert.Len(t, byID.Outline.Children, 2)

	all, err := svc.GetPolicy(ctx, PolicyRequest{ID: string(resp.Policy.ID), Include: []string{"ALL"}})
	require.NoError(t, err)
	assert.NotNil(t, all.Policy)
	assert.NotNil(t, all.Outline)
	assert.NotEmpty(t, all.Text)
}

func TestGetPolicyErrors(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	_, err := svc.GetPolicy(ctx, PolicyRequest{ID: "0000000000000000"})
	assert.ErrorIs(t, err, ErrPolicyNotFound)

	_, err = svc.GetPolicy(ctx, PolicyRequest{Title: "区块链信息服务管理规定"})
	assert.ErrorIs(t, err, ErrPolicyNotFound)
	assert.ErrorIs(t, err, ErrTitleNotFound)

	_, err = svc.GetPolicy(ctx, PolicyRequest{Title: "客户尽职调查指引"})
	var amb *AmbiguousError
	require.True(t, errors.As(err, &amb))
	assert.ErrorIs(t, err, ErrTitleAmbiguous)
	assert.Len(t, amb.Candidates, 2)

	_, err = svc.GetPolicy(ctx, PolicyRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.GetPolicy(ctx, PolicyRequest{Title: "反洗钱法", Include: []string{"summary"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCatalog(t *testing.T) {
	svc := newTestService(t, Options{Whitelist: NewWhitelist(nil, []string{"中华人民共和国反洗钱法"})})
	ctx := context.Background()

	def, err := svc.Catalog(ctx, CatalogRequest{})
	require.NoError(t, err)
	assert.Equal(t, ScopeDefault, def.Scope)
	require.Equal(t, 1, def.Count)
	assert.Equal(t, "中华人民共和国反洗钱法", def.Policies[0].Title)

	all, err := svc.Catalog(ctx, CatalogRequest{Scope: "all"})
	require.NoError(t, err)
	assert.Equal(t, 6, all.Count)

	_, err = svc.Catalog(ctx, CatalogRequest{Scope: "recent"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCatalogWithoutWhitelist(t *testing.T) {
	svc := newTestService(t, Options{})
	resp, err := svc.Catalog(context.Background(), CatalogRequest{Scope: "default"})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Count)
}

func TestSearch(t *testing.T) {
	m := metrics.New()
	svc := newTestService(t, Options{Metrics: m})
	ctx := context.Background()

	resp, err := svc.Search(ctx, SearchRequest{Query: "反洗钱", MetaFilter: json.RawMessage(`{"status":"valid"}`)})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "中华人民共和国反洗钱法", resp.Results[0].Title)
	for _, h := range resp.Results {
		assert.NotEqual(t, "金融机构反洗钱规定", h.Title)
	}
	assert.Equal(t, len(resp.Results), resp.Count)

	none, err := svc.Search(ctx, SearchRequest{Query: "区块链"})
	require.NoError(t, err)
	assert.NotNil(t, none.Results)
	assert.Zero(t, none.Count)

	limited, err := svc.Search(ctx, SearchRequest{Query: "反洗钱", TopK: 1})
	require.NoError(t, err)
	assert.Len(t, limited.Results, 1)
}

func TestSearchInvalid(t *testing.T) {
	svc := newTestService(t, Options{})
	for _, req := range []SearchRequest{
		{Query: " "},
		{Query: "反洗钱", TopK: -1},
		{Query: "反洗钱", MetaFilter: json.RawMessage(`{"region":"北京"}`)},
	} {
		_, err := svc.Search(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aml.yaml"),
		[]byte("title: 中华人民共和国反洗钱法\nsource_path: laws/aml.html\ntext: 第一条 为了预防洗钱活动。\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("title: [\n"), 0o644))

	m := metrics.New()
	svc := NewService(nil, Options{Metrics: m})
	before := svc.Index()

	idx, err := svc.Reload(context.Background(), artifact.DirSource{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, before.Generation()+1, idx.Generation())
	assert.Same(t, idx, svc.Index())
	assert.Equal(t, 0, before.Len())
	assert.Equal(t, 1, idx.Len())

	_, err = svc.Reload(context.Background(), artifact.DirSource{Dir: filepath.Join(dir, "absent")})
	assert.Error(t, err)
	assert.Same(t, idx, svc.Index())
}

func TestConcurrentReadsDuringRebuild(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				resp, err := svc.LookupClause(ctx, ClauseRequest{Title: "反洗钱法", Item: "第三条第二款"})
				if assert.NoError(t, err) && assert.Len(t, resp.Results, 1) {
					assert.Equal(t, "金融机构应当建立健全客户身份识别制度。", resp.Results[0].ClauseText)
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		svc.holder.Rebuild(testArtifacts(), index.Options{})
	}
	wg.Wait()
	assert.Equal(t, uint64(11), svc.Index().Generation())
}
