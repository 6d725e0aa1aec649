package config

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

var (
	flagsPath string
	flagMapMu sync.RWMutex
	allFlags  = make(map[string]configFlag)
)

type configFlag interface {
	InternalName() string
	rawValue() (json.RawMessage, error)
	loadRaw(raw json.RawMessage) error
	loadOverride(val string) error
}

// Flag is a runtime setting persisted to the flags file.
type Flag[T any] interface {
	Value() T
	Update(T)
	InternalName() string
	HumanName() string
}

type flag[T any] struct {
	mu        sync.RWMutex
	name      string
	val       T
	humanName string
}

func (f *flag[T]) Value() T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.val
}

func (f *flag[T]) InternalName() string {
	return f.name
}

func (f *flag[T]) HumanName() string {
	return f.humanName
}

func (f *flag[T]) MarshalJSON() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return json.Marshal(&struct {
		InternalName string `json:"internal_name"`
		HumanName    string `json:"human_name"`
		Value        T      `json:"value"`
	}{
		InternalName: f.name,
		HumanName:    f.humanName,
		Value:        f.val,
	})
}

// Update sets the value and persists all flags.
func (f *flag[T]) Update(newVal T) {
	f.mu.Lock()
	f.val = newVal
	f.mu.Unlock()

	if flagsPath == "" {
		return
	}
	if err := SaveFlags(context.Background()); err != nil {
		slog.Warn("Couldn't save flag", slog.String("flag", f.name), slog.Any("err", err))
	}
}

func (f *flag[T]) rawValue() (json.RawMessage, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return json.Marshal(f.val)
}

func (f *flag[T]) loadRaw(raw json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var val T
	if err := json.Unmarshal(raw, &val); err != nil {
		return fmt.Errorf("invalid value, flag expected %T", f.val)
	}
	f.val = val
	return nil
}

func (f *flag[T]) loadOverride(raw string) error {
	// Strings may come without quotes
	if s, ok := any(&f.val).(*string); ok {
		f.mu.Lock()
		defer f.mu.Unlock()
		*s = raw
		return nil
	}
	return f.loadRaw(json.RawMessage(raw))
}

// GenFlag registers a typed flag. Registering the same name twice replaces the first flag.
func GenFlag[T any](name string, defaultVal T, readableName string) Flag[T] {
	flagMapMu.Lock()
	defer flagMapMu.Unlock()
	f := &flag[T]{name: name, val: defaultVal, humanName: readableName}
	allFlags[name] = f
	return f
}

func GetFlagVal[T any](name string) (T, bool) {
	flagMapMu.RLock()
	defer flagMapMu.RUnlock()
	if v, ok := allFlags[name].(*flag[T]); ok {
		return v.Value(), true
	}
	return *new(T), false
}

func GetFlags[T any]() []Flag[T] {
	flagMapMu.RLock()
	defer flagMapMu.RUnlock()
	var flags []Flag[T]
	for _, flg := range allFlags {
		if f, ok := flg.(*flag[T]); ok {
			flags = append(flags, f)
		}
	}
	slices.SortFunc(flags, func(a, b Flag[T]) int {
		return cmp.Compare(a.InternalName(), b.InternalName())
	})
	return flags
}

// LoadFlags reads the flags file, then applies INKWELL_FLAG_OVERRIDES
// (comma separated name=value pairs, values in JSON except for strings).
func LoadFlags(ctx context.Context) error {
	flagMapMu.RLock()
	defer flagMapMu.RUnlock()
	if flagsPath == "" {
		return errors.New("invalid flags path")
	}

	f, err := os.Open(flagsPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("couldn't open flags file: %w", err)
	default:
		defer f.Close()
		var data = make(map[string]json.RawMessage)
		if err := json.NewDecoder(f).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("couldn't decode flags file: %w", err)
		}
		for key, raw := range data {
			flg, ok := allFlags[key]
			if !ok {
				slog.WarnContext(ctx, "Unknown flag in flags file", slog.String("key", key))
				continue
			}
			if err := flg.loadRaw(raw); err != nil {
				slog.WarnContext(ctx, "Couldn't load flag", slog.String("key", key), slog.Any("err", err))
			}
		}
	}

	for _, override := range strings.Split(os.Getenv("INKWELL_FLAG_OVERRIDES"), ",") {
		if override == "" {
			continue
		}
		key, val, found := strings.Cut(override, "=")
		if !found {
			slog.WarnContext(ctx, "Invalid override", slog.String("override", override))
			continue
		}
		flg, ok := allFlags[key]
		if !ok {
			slog.WarnContext(ctx, "Could not find flag", slog.String("name", key))
			continue
		}
		if err := flg.loadOverride(val); err != nil {
			slog.WarnContext(ctx, "Invalid flag override", slog.String("key", key), slog.Any("err", err))
		}
	}

	return nil
}

func SaveFlags(ctx context.Context) error {
	if flagsPath == "" {
		return errors.New("invalid flags path")
	}
	if err := os.MkdirAll(filepath.Dir(flagsPath), 0755); err != nil {
		return err
	}
	flagMapMu.RLock()
	defer flagMapMu.RUnlock()

	var values = make(map[string]json.RawMessage)
	for key, flg := range allFlags {
		raw, err := flg.rawValue()
		if err != nil {
			return fmt.Errorf("couldn't encode flag %q: %w", key, err)
		}
		values[key] = raw
	}
	out, err := json.MarshalIndent(values, "", "\t")
	if err != nil {
		return err
	}
	if err := os.WriteFile(flagsPath, out, 0644); err != nil {
		slog.WarnContext(ctx, "Couldn't write flags file", slog.Any("err", err))
		return err
	}
	return nil
}

func SetFlagsPath(path string) {
	flagsPath = path
}
