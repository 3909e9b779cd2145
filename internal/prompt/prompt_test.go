package prompt

import (
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajaysolanky/namazing-sub000/prompts"
)

func TestParse(t *testing.T) {
	tpl, err := Parse("System:\nYou are careful.\nVery careful.\n\nInstruction:\nDo the thing.\n\nThen stop.\n")
	require.NoError(t, err)
	assert.Equal(t, "You are careful.\nVery careful.", tpl.System)
	assert.Equal(t, "Do the thing.\n\nThen stop.", tpl.Instruction)
}

func TestParseSameLineLabels(t *testing.T) {
	tpl, err := Parse("System: Persona here\n\nInstruction: Task here")
	require.NoError(t, err)
	assert.Equal(t, "Persona here", tpl.System)
	assert.Equal(t, "Task here", tpl.Instruction)
}

func TestParseRejectsMissingSections(t *testing.T) {
	cases := map[string]string{
		"no labels":         "just some text",
		"no instruction":    "System:\npersona only\n",
		"no blank line":     "System:\npersona\nInstruction:\ntask",
		"empty system":      "System:\n\nInstruction:\ntask",
		"empty instruction": "System:\npersona\n\nInstruction:\n   \n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedTemplate)
		})
	}
}

func TestParseYAML(t *testing.T) {
	tpl, err := ParseYAML([]byte("system: |\n  Persona.\ninstruction: |\n  Task.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Persona.", tpl.System)
	assert.Equal(t, "Task.", tpl.Instruction)

	_, err = ParseYAML([]byte("system: Persona.\n"))
	assert.ErrorIs(t, err, ErrMalformedTemplate)

	_, err = ParseYAML([]byte("system: [unterminated"))
	assert.ErrorIs(t, err, ErrMalformedTemplate)
}

func TestStoreLoadCachesPerID(t *testing.T) {
	fsys := fstest.MapFS{
		"greet.txt": {Data: []byte("System:\nfirst\n\nInstruction:\nsay hi")},
	}
	s := NewStore(fsys)

	tpl, err := s.Load("greet")
	require.NoError(t, err)
	assert.Equal(t, "first", tpl.System)

	// Changing the backing resource after the first load has no effect.
	fsys["greet.txt"] = &fstest.MapFile{Data: []byte("System:\nsecond\n\nInstruction:\nsay bye")}
	tpl, err = s.Load("greet")
	require.NoError(t, err)
	assert.Equal(t, "first", tpl.System)
}

func TestStorePrefersYAML(t *testing.T) {
	s := NewStore(fstest.MapFS{
		"both.txt":  {Data: []byte("System:\ntext\n\nInstruction:\ntext task")},
		"both.yaml": {Data: []byte("system: yaml\ninstruction: yaml task\n")},
	})
	tpl, err := s.Load("both")
	require.NoError(t, err)
	assert.Equal(t, "yaml", tpl.System)
}

func TestStoreErrors(t *testing.T) {
	s := NewStore(fstest.MapFS{
		"broken.txt": {Data: []byte("no sections at all")},
	})

	_, err := s.Load("missing")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = s.Load("../etc/passwd")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = s.Load("broken")
	assert.ErrorIs(t, err, ErrMalformedTemplate)

	// Failures are not cached: fixing the resource makes the next load succeed.
	s.fsys = fstest.MapFS{"broken.txt": {Data: []byte("System:\nok\n\nInstruction:\nok")}}
	_, err = s.Load("broken")
	assert.NoError(t, err)
}

func TestStoreConcurrentFirstLoad(t *testing.T) {
	s := NewStore(fstest.MapFS{
		"race.txt": {Data: []byte("System:\np\n\nInstruction:\ni")},
	})
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tpl, err := s.Load("race")
			assert.NoError(t, err)
			assert.Equal(t, "i", tpl.Instruction)
		}()
	}
	wg.Wait()
}

func TestEmbeddedTemplatesParse(t *testing.T) {
	s := NewStore(prompts.FS)
	for _, id := range []string{"brief_parser", "name_generator", "researcher", "expert_selector", "report_composer"} {
		t.Run(id, func(t *testing.T) {
			tpl, err := s.Load(id)
			require.NoError(t, err)
			assert.NotEmpty(t, tpl.System)
			assert.NotEmpty(t, tpl.Instruction)
		})
	}
}
