package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetIn(strings.NewReader(""))
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "names.db")

	out, err := run(t, "parse", "--db", db, "Bryanne Brissian de Souza", "Langhi Júnior")
	require.NoError(t, err)
	assert.Contains(t, out, `given="Bryanne Brissian"`)
	assert.Contains(t, out, `family="Langhi"`)
}

func TestImportClassifyExport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "names.db")
	table := filepath.Join(dir, "table.csv")
	require.NoError(t, os.WriteFile(table,
		[]byte("name,occ_given,occ_family\nthomas,80000,1000\nsmith,200,60000\n"), 0o644))

	out, err := run(t, "import", "--db", db, table)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 rows")

	out, err = run(t, "classify", "--db", db, "Thomas", "Smith", "Zebulon")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for i, want := range []string{"given", "family", "unknown"} {
		assert.Equal(t, want, strings.Fields(lines[i])[1], lines[i])
	}

	out, err = run(t, "author", "--db", db, "Thomas Smith")
	require.NoError(t, err)
	assert.Contains(t, out, `given="Thomas" family="Smith"`)

	exported := filepath.Join(dir, "out.csv")
	_, err = run(t, "export", "--db", db, "-o", exported)
	require.NoError(t, err)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Equal(t, "name,occ_given,occ_family,soundex,metaphone\nsmith,200,60000,S530,SM0\nthomas,80000,1000,T520,TMS\n", string(data))
}

func TestTrainAndSnapshot(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "names.db")
	corpusDir := filepath.Join(dir, "corpus")
	require.NoError(t, os.Mkdir(corpusDir, 0o755))
	xml := `<Authors>
  <Author><FamilyName>Souza</FamilyName><GivenName>Anna Maria</GivenName></Author>
  <Author><FamilyName>Maria</FamilyName><GivenName>Anna</GivenName></Author>
</Authors>`
	require.NoError(t, os.WriteFile(filepath.Join(corpusDir, "a.xml"), []byte(xml), 0o644))

	out, err := run(t, "train", "--db", db, "--workers", "2", corpusDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Trained 2 authors")

	snap := filepath.Join(dir, "names.fst")
	out, err = run(t, "snapshot", "--db", db, snap)
	require.NoError(t, err)
	assert.Contains(t, out, "3 tokens")

	out, err = run(t, "classify", "--snapshot", snap, "Anna")
	require.NoError(t, err)
	assert.Equal(t, "given", strings.Fields(out)[1])
}

func TestRulesCommands(t *testing.T) {
	out, err := run(t, "rules", "contains", "Von der")
	require.NoError(t, err)
	assert.Contains(t, out, "particle")

	_, err = run(t, "rules", "contains", "Smith")
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "rules.yaml")
	out, err = run(t, "rules", "add", "--file", file, "--kind", "suffix", "Filho")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 1 suffix")

	out, err = run(t, "rules", "remove", "--file", file, "--kind", "suffix", "FILHO")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 suffix")
}
