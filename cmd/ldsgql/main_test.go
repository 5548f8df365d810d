package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lds-graphql-eval/internal/cliapp"
)

const objectInfoJSON = `{
	"User": {
		"fields": {
			"Id": {"dataType": "ID"},
			"Name": {"dataType": "String"}
		}
	}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	return dir
}

func TestRun_Version(t *testing.T) {
	isolate(t)
	var out bytes.Buffer
	require.NoError(t, run([]string{"--version"}, nil, false, &out))
	assert.Equal(t, "ldsgql dev (none)\n", out.String())
}

func TestRun_CompilesFromStdin(t *testing.T) {
	dir := isolate(t)
	infos := writeFile(t, dir, "objectinfos.json", objectInfoJSON)

	var out bytes.Buffer
	stdin := strings.NewReader(`{ uiapi { query { User(where: { Name: { like: "Ad%" } }) @connection { edges { node { Id Name { value } } } } } } }`)
	err := run([]string{"--compiler.object_info_file", infos, "--logging.level", "error"}, stdin, false, &out)
	require.NoError(t, err)

	var result struct {
		SQL      string   `json:"sql"`
		Bindings []string `json:"bindings"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Contains(t, result.SQL, "LIKE ?")
	assert.Equal(t, []string{"'Ad%'", "'User'"}, result.Bindings)
}

func TestRun_ExecutesWithRecords(t *testing.T) {
	dir := isolate(t)
	infos := writeFile(t, dir, "objectinfos.json", objectInfoJSON)
	request := writeFile(t, dir, "request.graphql", `{ uiapi { query { User @connection { edges { node { Name { value } } } } } } }`)
	records := writeFile(t, dir, "records.yaml", `
- data:
    id: 005xx0000000001AAA
    apiName: User
    fields:
      Name: {value: Grace}
`)

	var out bytes.Buffer
	err := run([]string{
		"--compiler.object_info_file", infos,
		"--request.file", request,
		"--store.execute",
		"--store.records_files", records,
		"--logging.level", "error",
	}, nil, false, &out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"uiapi":{"query":{"User":{"edges":[{"node":{
		"Id": "005xx0000000001AAA",
		"_drafts": null,
		"_metadata": {"namespace": "UiApi::", "representationName": "RecordRepresentation"},
		"Name": {"value": "Grace"}
	}}]}}}}}`, out.String())
}

func TestRun_CompileErrorsExitWithSentinel(t *testing.T) {
	dir := isolate(t)
	infos := writeFile(t, dir, "objectinfos.json", objectInfoJSON)

	var out bytes.Buffer
	stdin := strings.NewReader(`{ uiapi { query { Account @connection { edges { node { Id } } } } } }`)
	err := run([]string{"--compiler.object_info_file", infos, "--logging.level", "error"}, stdin, false, &out)
	require.ErrorIs(t, err, cliapp.ErrCompileFailed)
	assert.Contains(t, out.String(), `"message"`)
	assert.Contains(t, out.String(), "Account")
}

func TestRun_ValidationFailure(t *testing.T) {
	isolate(t)
	err := run([]string{"--logging.level", "error"}, strings.NewReader(""), false, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, "configuration validation failed", err.Error())
}

func TestRun_BadFlag(t *testing.T) {
	isolate(t)
	err := run([]string{"--no-such-flag"}, nil, false, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestRun_RefusesInteractiveStdin(t *testing.T) {
	dir := isolate(t)
	infos := writeFile(t, dir, "objectinfos.json", objectInfoJSON)

	err := run([]string{"--compiler.object_info_file", infos, "--logging.level", "error"}, strings.NewReader("{}"), true, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}
