package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/model"
)

// SchemaVersion reads the stored schema version. A store that has never
// been stamped is reported as the legacy version.
func (s *Store) SchemaVersion() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schemaVersion()
}

func (s *Store) schemaVersion() (int, error) {
	data, ok, err := s.backend.Get(config.KeySchema)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", config.ErrStoreRead, config.KeySchema, err)
	}
	if !ok {
		return config.SchemaVersionLegacy, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", config.ErrStoreDecode, config.KeySchema, err)
	}
	return v, nil
}

// migrateSchema brings person collections written by the v1 schema (no
// lastWelcomeSentAt) to the canonical shape, then stamps the version.
// Collections that were never written are left alone so their seed still
// applies on first read.
func (s *Store) migrateSchema() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, err := s.schemaVersion()
	if err != nil {
		return err
	}
	if from >= config.SchemaVersion {
		return nil
	}

	for _, key := range []string{config.KeyVisitors, config.KeyMembers} {
		n, err := s.normalisePeople(key)
		if err != nil {
			return fmt.Errorf("%s: %w", config.ErrSchemaMigrate, err)
		}
		slog.Info(config.MsgSchemaMigrated,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyCollection, key,
			config.LogKeyCount, n,
			config.LogKeyFrom, from,
			config.LogKeyTo, config.SchemaVersion)
	}

	if err := s.backend.Set(config.KeySchema, []byte(strconv.Itoa(config.SchemaVersion))); err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrStoreWrite, config.KeySchema, err)
	}
	return nil
}

// normalisePeople rewrites one person collection and returns how many
// records lacked the welcome stamp field.
func (s *Store) normalisePeople(key string) (int, error) {
	data, ok, err := s.backend.Get(key)
	if err != nil || !ok {
		return 0, err
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("%s %q: %w", config.ErrStoreDecode, key, err)
	}
	missing := 0
	for _, r := range raw {
		if _, ok := r["lastWelcomeSentAt"]; !ok {
			missing++
		}
	}

	var people []model.Person
	if err := json.Unmarshal(data, &people); err != nil {
		return 0, fmt.Errorf("%s %q: %w", config.ErrStoreDecode, key, err)
	}
	for i := range people {
		people[i].BirthDate = strings.TrimSpace(people[i].BirthDate)
		people[i].LastBirthdayWishedAt = strings.TrimSpace(people[i].LastBirthdayWishedAt)
		// v1 had no welcome stamp: absent means never sent.
		people[i].LastWelcomeSentAt = strings.TrimSpace(people[i].LastWelcomeSentAt)
	}
	if people == nil {
		people = []model.Person{}
	}

	out, err := json.Marshal(people)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", config.ErrStoreEncode, key, err)
	}
	if err := s.backend.Set(key, out); err != nil {
		return 0, fmt.Errorf("%s %q: %w", config.ErrStoreWrite, key, err)
	}
	return missing, nil
}
