package freqcsv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kerem-kaynak/authorname/pkg/authorname"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, authorname.RecordsOf(
		authorname.Record{Token: "robert", Given: 10, Family: 2},
		authorname.Record{Token: "smith", Family: 7},
	))
	require.NoError(t, err)

	want := "name,occ_given,occ_family,soundex,metaphone\nrobert,10,2,R163,RPRT\nsmith,0,7,S530,SM0\n"
	assert.Equal(t, want, buf.String())
}

func TestRead(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []authorname.Record
	}{
		{
			name:  "with header",
			input: "name,occ_given,occ_family,soundex\nrobert,10,2,R163\n",
			want:  []authorname.Record{{Token: "robert", Given: 10, Family: 2}},
		},
		{
			name:  "reordered header",
			input: "occ_family,name,occ_given\n2,robert,10\n",
			want:  []authorname.Record{{Token: "robert", Given: 10, Family: 2}},
		},
		{
			name:  "no header",
			input: "anna,5,0\nsmith,1,9\n",
			want: []authorname.Record{
				{Token: "anna", Given: 5},
				{Token: "smith", Given: 1, Family: 9},
			},
		},
		{
			name:  "bad rows skipped",
			input: "anna,five,0\n,1,1\n# comment\nmaria,3\n",
			want:  []authorname.Record{{Token: "maria", Given: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteRead(t *testing.T) {
	store := authorname.NewMemoryStore()
	require.NoError(t, store.Load(authorname.RecordsOf(
		authorname.Record{Token: "José", Given: 4},
		authorname.Record{Token: "da, Silva", Family: 3},
	)))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, store.Export()))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, authorname.Records(store.Export()), got)
}

func TestReadCounts(t *testing.T) {
	input := "name,occurrences_given\nAnna,5\nanna,2\nBob,0\nCarl,-3\nDora,x\nEve,1,2\nFritz , 4\n"

	got, err := ReadCounts(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, map[string]uint64{"Anna": 5, "anna": 2, "Fritz": 4}, got)
}

func TestMergeCounts(t *testing.T) {
	given := "name,occurrences_given\nThomas,80\nMaria,90\nSmith,2\n"
	family := "name,occurrences_family\nSmith,60\nTHOMAS,1\nSilva,0\n"

	got, err := MergeCounts(strings.NewReader(given), strings.NewReader(family))
	require.NoError(t, err)
	assert.Equal(t, []authorname.Record{
		{Token: "maria", Given: 90},
		{Token: "smith", Given: 2, Family: 60},
		{Token: "thomas", Given: 80, Family: 1},
	}, got)
}
