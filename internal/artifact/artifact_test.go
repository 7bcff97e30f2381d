// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/policy-engine/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a-aml.yaml"), `title: 中华人民共和国反洗钱法
source_path: http://example.gov.cn/aml.html
title_variants: [反洗钱法]
issuing_authority: 全国人民代表大会常务委员会
status: Valid
effective_at: 2007-01-01
text: |
  第一条 为了预防洗钱活动，制定本法。
breakpoints:
  - line: 0
    level: article
    label: 第一条
`)
	writeFile(t, filepath.Join(dir, "b-kyc.json"), `{
	"title": "金融机构客户身份识别办法",
	"source_path": "kyc.html",
	"issued_at": "2007年6月21日",
	"text_path": "texts/kyc.txt"
}`)
	writeFile(t, filepath.Join(dir, "texts", "kyc.txt"), "第一条 为了规范金融机构客户身份识别行为。")
	writeFile(t, filepath.Join(dir, "c-legacy.yml"), "title: 旧办法\ntext_filename: texts/kyc.txt\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(dir, ".hidden.yaml"), "title: hidden\ntext: x\n")

	res, err := DirSource{Dir: dir}.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Artifacts, 3)

	aml := res.Artifacts[0]
	assert.Equal(t, "中华人民共和国反洗钱法", aml.Title)
	assert.Equal(t, []string{"反洗钱法"}, aml.TitleVariants)
	assert.Equal(t, types.StatusValid, aml.Status)
	assert.Equal(t, time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC), aml.EffectiveAt)
	assert.Contains(t, aml.Text, "预防洗钱")
	require.Len(t, aml.Breakpoints, 1)
	assert.Equal(t, types.LevelArticle, aml.Breakpoints[0].Level)

	kyc := res.Artifacts[1]
	assert.Equal(t, time.Date(2007, 6, 21, 0, 0, 0, 0, time.UTC), kyc.IssuedAt)
	assert.Equal(t, "第一条 为了规范金融机构客户身份识别行为。", kyc.Text)
	assert.Equal(t, filepath.Join(dir, "texts", "kyc.txt"), kyc.TextPath)

	assert.Equal(t, kyc.Text, res.Artifacts[2].Text)
}

func TestDirSourceWarnings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), "title: [unclosed\n")
	writeFile(t, filepath.Join(dir, "date.yaml"), "title: 办法\ntext: x\neffective_at: someday\n")
	writeFile(t, filepath.Join(dir, "missing.yaml"), "title: 办法\ntext_path: nope.txt\n")
	writeFile(t, filepath.Join(dir, "ok.yaml"), "title: 办法\ntext: 第一条 内容。\n")

	res, err := DirSource{Dir: dir}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)
	require.Len(t, res.Warnings, 3)
	assert.Equal(t, filepath.Join(dir, "bad.yaml"), res.Warnings[0].Location)

	var pathErr *os.PathError
	assert.True(t, errors.As(res.Warnings[2], &pathErr))
}

func TestDirSourceMissingDir(t *testing.T) {
	_, err := DirSource{Dir: filepath.Join(t.TempDir(), "absent")}.Load(context.Background())
	assert.Error(t, err)
}

func TestDirSourceCanceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.yaml"), "title: 办法\ntext: x\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DirSource{Dir: dir}.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func createPolicyDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policies.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE policies (
		title TEXT, source_path TEXT, title_variants TEXT, issuing_authority TEXT,
		status TEXT, law_level TEXT, doc_no TEXT, issued_at TEXT, effective_at TEXT,
		text TEXT, breakpoints TEXT)`)
	require.NoError(t, err)

	rows := [][]any{
		{"中华人民共和国反洗钱法", "aml.html", `["反洗钱法"]`, "全国人民代表大会常务委员会", "valid", "法律", nil, "2006-10-31", "2007-01-01", "第一条 为了预防洗钱活动。", `[{"line":0,"level":"article"}]`},
		{"坏数据", "bad.html", `{not json`, nil, nil, nil, nil, nil, nil, "x", nil},
		{"支付机构管理办法", "pay.html", nil, "中国人民银行", "valid", nil, "银发〔2021〕1号", nil, "2021-07-01 00:00:00", "第一条 支付机构。", nil},
	}
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO policies VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, r...)
		require.NoError(t, err)
	}
	return path
}

func TestSQLiteSource(t *testing.T) {
	path := createPolicyDB(t)

	res, err := SQLiteSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 2)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, path+"#2", res.Warnings[0].Location)

	aml := res.Artifacts[0]
	assert.Equal(t, []string{"反洗钱法"}, aml.TitleVariants)
	assert.Equal(t, "法律", aml.LawLevel)
	assert.Equal(t, time.Date(2006, 10, 31, 0, 0, 0, 0, time.UTC), aml.IssuedAt)
	require.Len(t, aml.Breakpoints, 1)

	pay := res.Artifacts[1]
	assert.Equal(t, "银发〔2021〕1号", pay.DocNo)
	assert.Equal(t, time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC), pay.EffectiveAt)
}

func TestSQLiteSourceMissing(t *testing.T) {
	_, err := SQLiteSource{Path: filepath.Join(t.TempDir(), "none.db")}.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromConfig(t *testing.T) {
	src, err := FromConfig(types.CorpusConfig{Dir: "a", SQLitePath: "b.db"})
	require.NoError(t, err)
	assert.Equal(t, SQLiteSource{Path: "b.db"}, src)

	src, err = FromConfig(types.CorpusConfig{Dir: "a"})
	require.NoError(t, err)
	assert.Equal(t, DirSource{Dir: "a"}, src)

	_, err = FromConfig(types.CorpusConfig{})
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2020, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2020-03-05", "2020/3/5", "2020.03.05", "2020年3月5日", " 2020-03-05 "} {
		got, err := parseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}
	got, err := parseDate("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
