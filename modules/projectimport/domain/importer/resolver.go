package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultClientName is used when a project row carries no client name.
const DefaultClientName = "Default Client"

// ImportedProgramSuffix names the program auto-created under each client.
const ImportedProgramSuffix = " - Imported Projects"

// HierarchyResolver owns all reference resolution for one import: the
// Excel-local-id to database-id table per entity type, and the client,
// program, and user lookup caches. Instances are scoped to a single import
// and are not safe for concurrent use.
//
// Clients and programs sit above the spreadsheet's own hierarchy and are
// always safe to synthesize; references between the spreadsheet's own levels
// must resolve against the mapping table or fail.
type HierarchyResolver struct {
	directory Directory
	writer    RecordWriter

	clientsByName    map[string]string
	programsByClient map[string]string
	usersByKey       map[string]userEntry
	mappings         map[EntityType]map[string]string
}

type userEntry struct {
	id    string
	found bool
}

func NewHierarchyResolver(directory Directory, writer RecordWriter) *HierarchyResolver {
	return &HierarchyResolver{
		directory:        directory,
		writer:           writer,
		clientsByName:    make(map[string]string),
		programsByClient: make(map[string]string),
		usersByKey:       make(map[string]userEntry),
		mappings:         make(map[EntityType]map[string]string),
	}
}

// GetOrCreateClient resolves a client by name, case-insensitively, creating
// it when absent. A blank name falls back to the default client. The result
// is cached for the import's duration.
func (r *HierarchyResolver) GetOrCreateClient(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultClientName
	}
	key := strings.ToLower(name)
	if id, ok := r.clientsByName[key]; ok {
		return id, nil
	}

	id, err := r.directory.FindClientByName(ctx, name)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		id, err = r.writer.Insert(ctx, EntityClients, Record{"name": String(name)})
		if err != nil {
			return "", fmt.Errorf("create client %q: %w", name, err)
		}
	default:
		return "", fmt.Errorf("look up client %q: %w", name, err)
	}

	r.clientsByName[key] = id
	return id, nil
}

// GetOrCreateProgram resolves or creates the imported-projects program under
// the given client, cached per client id.
func (r *HierarchyResolver) GetOrCreateProgram(ctx context.Context, clientID, clientName string) (string, error) {
	if id, ok := r.programsByClient[clientID]; ok {
		return id, nil
	}

	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		clientName = DefaultClientName
	}
	name := clientName + ImportedProgramSuffix

	id, err := r.directory.FindProgram(ctx, clientID, name)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		id, err = r.writer.Insert(ctx, EntityPrograms, Record{
			"client_id": String(clientID),
			"name":      String(name),
		})
		if err != nil {
			return "", fmt.Errorf("create program %q: %w", name, err)
		}
	default:
		return "", fmt.Errorf("look up program %q: %w", name, err)
	}

	r.programsByClient[clientID] = id
	return id, nil
}

// ResolveUser matches a human-entered identifier against user full names and
// emails, case-insensitively. An unmatched identifier is not an error; rows
// import with an unassigned owner. Failed lookups are cached so the same
// missing user is queried once per import.
func (r *HierarchyResolver) ResolveUser(ctx context.Context, identifier string) (string, bool, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", false, nil
	}
	key := strings.ToLower(identifier)
	if entry, ok := r.usersByKey[key]; ok {
		return entry.id, entry.found, nil
	}

	id, err := r.directory.FindUserByIdentifier(ctx, identifier)
	switch {
	case err == nil:
		r.usersByKey[key] = userEntry{id: id, found: true}
		return id, true, nil
	case errors.Is(err, ErrNotFound):
		r.usersByKey[key] = userEntry{}
		return "", false, nil
	default:
		return "", false, fmt.Errorf("look up user %q: %w", identifier, err)
	}
}

// RecordMapping registers the database id generated for an Excel-local id.
// Registering the same (entity, excel id) pair twice is an error.
func (r *HierarchyResolver) RecordMapping(entity EntityType, excelID, dbID string) error {
	excelID = strings.TrimSpace(excelID)
	if excelID == "" {
		return nil
	}
	table, ok := r.mappings[entity]
	if !ok {
		table = make(map[string]string)
		r.mappings[entity] = table
	}
	if existing, dup := table[excelID]; dup && existing != dbID {
		return fmt.Errorf("duplicate %s excel id %q", entity, excelID)
	}
	table[excelID] = dbID
	return nil
}

// LookupMapping resolves an Excel-local id recorded earlier in this import.
// A miss is a resolution failure for the caller to handle, never a crash.
func (r *HierarchyResolver) LookupMapping(entity EntityType, excelID string) (string, bool) {
	table, ok := r.mappings[entity]
	if !ok {
		return "", false
	}
	id, ok := table[strings.TrimSpace(excelID)]
	return id, ok
}
