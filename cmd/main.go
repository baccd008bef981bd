package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"stavekontrol/internal/classifier"
	"stavekontrol/internal/customdict"
	"stavekontrol/internal/nlp"
	"stavekontrol/internal/store"
	"stavekontrol/internal/typo"
)

type serviceConfig struct {
	Addr            string      `yaml:"addr"`
	DBPath          string      `yaml:"db_path"`
	DictionaryPaths []string    `yaml:"dictionary_paths"`
	Redis           redisConfig `yaml:"redis"`
	Engine          typo.Config `yaml:"engine"`
}

type redisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func loadConfig(path string, logger *slog.Logger) serviceConfig {
	cfg := serviceConfig{
		Addr:   ":8080",
		DBPath: "stavekontrol.db",
		Engine: typo.DefaultConfig(),
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logger.Error("malformed config file", "path", path, "error", err)
			os.Exit(1)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Error("config file unreadable", "path", path, "error", err)
		os.Exit(1)
	}
	cfg.Addr = getenv("HTTP_ADDR", cfg.Addr)
	cfg.DBPath = getenv("DB_PATH", cfg.DBPath)
	cfg.Redis.Addr = getenv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getenv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	if p := os.Getenv("DICTIONARY_PATH"); p != "" {
		cfg.DictionaryPaths = append(cfg.DictionaryPaths, p)
	}
	cfg.Engine.DictionaryPaths = append(cfg.Engine.DictionaryPaths, cfg.DictionaryPaths...)
	return cfg
}

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig(*cfgPath, logger)
	if err := cfg.Engine.Validate(); err != nil {
		logger.Error("invalid engine config", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("knowledge store init failed", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var mirror typo.UserWordMirror
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		mirror = customdict.New(client)
	}

	ctx := context.Background()
	engine, err := typo.NewEngine(ctx, cfg.Engine, st, logger, mirror)
	if err != nil {
		logger.Error("engine init failed", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	cls := classifier.New(st, nlp.NewSuffixAdapter(), engine, cfg.Engine, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/analyze", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		results, err := cls.ClassifyText(r.Context(), req.Text)
		if err != nil {
			writeStoreError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"tokens": results})
	})

	mux.HandleFunc("/api/v1/words", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Lemma string `json:"lemma"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Lemma) == "" {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := engine.LearnWord(r.Context(), req.Lemma); err != nil {
			writeStoreError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/api/v1/ignore", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Token      string `json:"token"`
			Scope      string `json:"scope"`
			TTLSeconds int64  `json:"ttl_seconds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if req.Scope == "" {
			req.Scope = typo.ScopeGlobal
		}
		var expires *time.Time
		if req.TTLSeconds > 0 {
			t := time.Now().Add(time.Duration(req.TTLSeconds) * time.Second)
			expires = &t
		}
		if err := engine.IgnoreToken(r.Context(), req.Token, req.Scope, expires); err != nil {
			writeStoreError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/api/v1/feedback", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req struct {
			RawToken         string   `json:"raw_token"`
			PredictedStatus  string   `json:"predicted_status"`
			SuggestionsShown []string `json:"suggestions_shown"`
			UserAction       string   `json:"user_action"`
			ChosenValue      string   `json:"chosen_value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.RawToken) == "" {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		err := engine.RecordFeedback(r.Context(), typo.Feedback{
			RawToken:         req.RawToken,
			PredictedStatus:  req.PredictedStatus,
			SuggestionsShown: req.SuggestionsShown,
			UserAction:       req.UserAction,
			ChosenValue:      req.ChosenValue,
		})
		if err != nil {
			writeStoreError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	})

	logger.Info("stavekontrol listening", "addr", cfg.Addr, "dictionaries", len(cfg.Engine.DictionaryPaths))
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeStoreError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if errors.Is(err, store.ErrUnavailable) {
		logger.Warn("knowledge store unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "knowledge store unavailable")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}
