package telegram

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanopics/NanoBananaBot/internal/storage"
)

// testBunt opens a fresh settings store and evicts any cached settings
// entry, the cache in front of the store is shared per process.
func testBunt(t *testing.T) *storage.DB {
	t.Helper()
	db := storage.NewBunt(filepath.Join(t.TempDir(), "settings.db"))
	s := &Settings{Base: storage.New(storage.ID(settingsKey))}
	_ = s.Delete(s, db)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPersistSettingRoundtrip(t *testing.T) {
	db := testBunt(t)
	bot := &PaintBot{Bunt: db, apiBase: "", modelName: "config/model"}
	require.NoError(t, bot.persistSetting("custom_api_base", "https://proxy.example.com/v1"))

	// a fresh bot sees the persisted value
	restarted := &PaintBot{Bunt: db, modelName: "config/model"}
	restarted.loadSettings()
	assert.Equal(t, "https://proxy.example.com/v1", restarted.apiBase)
	assert.Equal(t, "config/model", restarted.modelName)
}

func TestPersistSettingPatchesSingleField(t *testing.T) {
	db := testBunt(t)
	bot := &PaintBot{Bunt: db}
	require.NoError(t, bot.persistSetting("custom_api_base", "https://proxy.example.com/v1"))
	require.NoError(t, bot.persistSetting("model_name", "other/model"))

	restarted := &PaintBot{Bunt: db}
	restarted.loadSettings()
	assert.Equal(t, "https://proxy.example.com/v1", restarted.apiBase)
	assert.Equal(t, "other/model", restarted.modelName)
}

func TestPersistSettingUnknownField(t *testing.T) {
	bot := &PaintBot{Bunt: testBunt(t)}
	assert.Error(t, bot.persistSetting("bogus", "x"))
}

func TestLoadSettingsWithoutStoredSettings(t *testing.T) {
	bot := &PaintBot{Bunt: testBunt(t), apiBase: "from-config", modelName: "config/model"}
	bot.loadSettings()
	assert.Equal(t, "from-config", bot.apiBase)
	assert.Equal(t, "config/model", bot.modelName)
}

func TestLoadSettingsRunsOnce(t *testing.T) {
	db := testBunt(t)
	bot := &PaintBot{Bunt: db}
	require.NoError(t, bot.persistSetting("model_name", "first/model"))
	bot.loadSettings()
	assert.Equal(t, "first/model", bot.modelName)

	// session override survives later loadSettings calls
	bot.setModelName("session/model")
	bot.loadSettings()
	_, model := bot.generationSettings()
	assert.Equal(t, "session/model", model)
}

// handlers of different senders run on separate goroutines, the
// settings fields must stay safe under concurrent access
func TestSettingsConcurrentAccess(t *testing.T) {
	db := testBunt(t)
	bot := &PaintBot{Bunt: db, apiBase: "from-config", modelName: "config/model"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bot.loadSettings()
			bot.setApiBase("https://proxy.example.com/v1")
			base, model := bot.generationSettings()
			assert.NotEmpty(t, base)
			assert.NotEmpty(t, model)
		}()
	}
	wg.Wait()

	base, _ := bot.generationSettings()
	assert.Equal(t, "https://proxy.example.com/v1", base)
}
