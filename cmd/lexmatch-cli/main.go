package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/cognicore/lexmatch/pkg/lexmatch"
	"github.com/cognicore/lexmatch/pkg/lexmatch/config"
	"github.com/cognicore/lexmatch/pkg/lexmatch/dataset"
	"github.com/cognicore/lexmatch/pkg/lexmatch/entity"
	"github.com/cognicore/lexmatch/pkg/lexmatch/store"
	"github.com/cognicore/lexmatch/pkg/lexmatch/store/sqlite"
)

func main() {
	var (
		datasetPath  = flag.String("dataset", "", "Training dataset (YAML or JSON)")
		modelDir     = flag.String("model-dir", "", "Load a persisted model from this directory")
		persistDir   = flag.String("persist", "", "Persist the trained model to this directory")
		dbPath       = flag.String("db", "", "SQLite model store path")
		modelID      = flag.String("model", "", "Model ID to load from the store")
		save         = flag.Bool("save", false, "Save the trained model to the store")
		query        = flag.String("query", "", "One-shot query (non-interactive mode)")
		stoplistPath = flag.String("stoplist", "", "Stop-word list file (optional)")
		ignoreStops  = flag.Bool("ignore-stopwords", false, "Filter stop words during matching")
		watch        = flag.Bool("watch", false, "Refit automatically when the dataset file changes")
		verbose      = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if *datasetPath == "" && *modelDir == "" && *modelID == "" {
		log.Fatal("one of --dataset, --model-dir or --model required")
	}

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatal(err)
		}
	}

	opts := lexmatch.Options{
		Config: config.Config{IgnoreStopWords: *ignoreStops},
		Logger: logger,
	}
	if *stoplistPath != "" {
		sl, err := config.LoadStoplist(*stoplistPath)
		if err != nil {
			log.Fatal(err)
		}
		opts.StopWords = sl.Terms
	}

	// A gazetteer detector needs the dataset's entity declarations, so it
	// is only available when a dataset is given.
	var ds *dataset.Dataset
	if *datasetPath != "" {
		var err error
		ds, err = dataset.Load(*datasetPath)
		if err != nil {
			log.Fatal(err)
		}
		opts.Detectors = []entity.Detector{entity.NewGazetteer(ds.Entities, ds.Language)}
	}

	ctx := context.Background()

	parser, err := buildParser(ctx, ds, opts, *modelDir, *dbPath, *modelID)
	if err != nil {
		log.Fatal(err)
	}

	if *persistDir != "" {
		if err := parser.Persist(*persistDir); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("model persisted to %s\n", *persistDir)
	}

	if *save {
		if *dbPath == "" {
			log.Fatal("--save requires --db")
		}
		id, err := saveModel(ctx, parser, ds, *dbPath)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("model saved as %s\n", id)
	}

	session := &session{parser: parser}

	if *watch {
		if *datasetPath == "" {
			log.Fatal("--watch requires --dataset")
		}
		stop, err := watchDataset(*datasetPath, opts, session)
		if err != nil {
			log.Fatal(err)
		}
		defer stop()
	}

	// One-shot query mode
	if *query != "" {
		if err := session.execute(*query); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  lexmatch CLI")
	fmt.Println("  Deterministic intent/slot extraction")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Type an utterance (Ctrl+D to exit):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if err := session.execute(input); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func buildParser(ctx context.Context, ds *dataset.Dataset, opts lexmatch.Options, modelDir, dbPath, modelID string) (*lexmatch.Parser, error) {
	if modelDir != "" {
		return lexmatch.Load(modelDir, opts)
	}

	if modelID != "" {
		if dbPath == "" {
			return nil, fmt.Errorf("--model requires --db")
		}
		st, err := sqlite.Open(ctx, dbPath)
		if err != nil {
			return nil, err
		}
		defer st.Close()

		m, found, err := st.GetModel(ctx, modelID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("model %s not found in %s", modelID, dbPath)
		}
		return lexmatch.Unmarshal(m.Record, opts)
	}

	parser := lexmatch.New(opts)
	if err := parser.Fit(ds); err != nil {
		return nil, err
	}
	return parser, nil
}

func saveModel(ctx context.Context, parser *lexmatch.Parser, ds *dataset.Dataset, dbPath string) (string, error) {
	record, err := parser.Marshal()
	if err != nil {
		return "", err
	}

	st, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return "", err
	}
	defer st.Close()

	language := ""
	if ds != nil {
		language = ds.Language
	}
	m := store.Model{
		ID:        store.NewModelID(),
		Language:  language,
		CreatedAt: time.Now().UTC(),
		Record:    record,
	}
	if err := st.SaveModel(ctx, m); err != nil {
		return "", err
	}
	return m.ID, nil
}

// session serializes parser swaps against queries. The parser itself does
// no locking, so watch-mode refits must be fenced here.
type session struct {
	mu     sync.RWMutex
	parser *lexmatch.Parser
}

func (s *session) execute(input string) error {
	s.mu.RLock()
	parser := s.parser
	s.mu.RUnlock()

	res, err := parser.Parse(input)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func (s *session) replace(parser *lexmatch.Parser) {
	s.mu.Lock()
	s.parser = parser
	s.mu.Unlock()
}

// watchDataset refits a fresh parser whenever the dataset file changes and
// swaps it into the session.
func watchDataset(path string, opts lexmatch.Options, session *session) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				ds, err := dataset.Load(path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "reload dataset: %v\n", err)
					continue
				}
				refreshed := opts
				refreshed.Detectors = []entity.Detector{entity.NewGazetteer(ds.Entities, ds.Language)}
				parser := lexmatch.New(refreshed)
				if err := parser.Fit(ds); err != nil {
					fmt.Fprintf(os.Stderr, "refit: %v\n", err)
					continue
				}
				session.replace(parser)
				fmt.Fprintln(os.Stderr, "dataset changed, model refitted")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
