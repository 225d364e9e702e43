package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/schemabase/backend/internal/domain/definition"
	"github.com/schemabase/backend/internal/domain/metaschema"
	"github.com/schemabase/backend/internal/domain/ports"
	"github.com/schemabase/backend/pkg/constants"
	"github.com/schemabase/backend/pkg/errors"
	"github.com/schemabase/backend/pkg/utils"
)

// RegistryService owns the registered definitions: it validates incoming
// definitions through the engine, persists accepted ones, and keeps an
// in-memory cache of the decoded set so cross-definition checks (reference
// resolution, cycle detection) always run against the full graph.
type RegistryService struct {
	repo   ports.DefinitionRepository
	engine *ValidationEngine

	mu          sync.RWMutex
	collections map[string]*definition.CollectionDefinition
	functions   map[string]*definition.FunctionDefinition
	rbacBundles map[string]*definition.RBACDefinition
}

// NewRegistryService creates a new RegistryService
func NewRegistryService(repo ports.DefinitionRepository, engine *ValidationEngine) *RegistryService {
	return &RegistryService{
		repo:        repo,
		engine:      engine,
		collections: make(map[string]*definition.CollectionDefinition),
		functions:   make(map[string]*definition.FunctionDefinition),
		rbacBundles: make(map[string]*definition.RBACDefinition),
	}
}

// RefreshCache reloads every stored definition into the in-memory cache.
// Called once at startup and by the revalidation scheduler.
func (s *RegistryService) RefreshCache(ctx context.Context) error {
	collections := make(map[string]*definition.CollectionDefinition)
	functions := make(map[string]*definition.FunctionDefinition)
	rbacBundles := make(map[string]*definition.RBACDefinition)

	records, err := s.repo.FindAll(ctx, constants.KindCollection)
	if err != nil {
		return fmt.Errorf("failed to load collection definitions: %w", err)
	}
	for _, record := range records {
		var def definition.CollectionDefinition
		if err := json.Unmarshal(record.Payload, &def); err != nil {
			log.Printf("⚠️ Skipping undecodable collection definition %q: %v", record.Name, err)
			continue
		}
		collections[record.Name] = &def
	}

	records, err = s.repo.FindAll(ctx, constants.KindFunction)
	if err != nil {
		return fmt.Errorf("failed to load function definitions: %w", err)
	}
	for _, record := range records {
		var def definition.FunctionDefinition
		if err := json.Unmarshal(record.Payload, &def); err != nil {
			log.Printf("⚠️ Skipping undecodable function definition %q: %v", record.Name, err)
			continue
		}
		functions[record.Name] = &def
	}

	records, err = s.repo.FindAll(ctx, constants.KindRBAC)
	if err != nil {
		return fmt.Errorf("failed to load rbac definitions: %w", err)
	}
	for _, record := range records {
		var def definition.RBACDefinition
		if err := json.Unmarshal(record.Payload, &def); err != nil {
			log.Printf("⚠️ Skipping undecodable rbac definition %q: %v", record.Name, err)
			continue
		}
		rbacBundles[record.Name] = &def
	}

	s.mu.Lock()
	s.collections = collections
	s.functions = functions
	s.rbacBundles = rbacBundles
	s.mu.Unlock()

	log.Printf("✅ Definition cache loaded: %d collections, %d functions, %d rbac bundles",
		len(collections), len(functions), len(rbacBundles))
	return nil
}

// ValidateCollection runs the definition-local validation pipeline and
// returns the full report without persisting anything
func (s *RegistryService) ValidateCollection(value map[string]interface{}) *definition.ValidationReport {
	result := s.engine.ValidateCollectionDefinition(value)
	def, _ := definition.CollectionFromValue(value)
	return s.engine.BuildReport(def, result.Errors)
}

// ValidateFunction runs the function validation pipeline without persisting
func (s *RegistryService) ValidateFunction(value map[string]interface{}) *definition.ValidationReport {
	result := s.engine.ValidateFunctionDefinition(value)
	return s.engine.BuildReport(nil, result.Errors)
}

// ValidateRBAC runs the RBAC validation pipeline without persisting
func (s *RegistryService) ValidateRBAC(value map[string]interface{}) *definition.ValidationReport {
	result := s.engine.ValidateRBACDefinition(value)
	return s.engine.BuildReport(nil, result.Errors)
}

// CreateCollection validates and registers a new collection definition.
// Cross-definition checks run against the current cache plus the candidate
// itself, so self-references and new cycles are caught before persistence.
func (s *RegistryService) CreateCollection(ctx context.Context, value map[string]interface{}) (*definition.CollectionDefinition, error) {
	def, report := s.checkCollection(value, "")
	if report != nil {
		name := ""
		if def != nil {
			name = def.Name
		}
		return nil, errors.NewDefinitionRejectedError(constants.KindCollection, name, report)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[def.Name]; exists {
		return nil, errors.NewConflictError("collection definition", "name", def.Name)
	}
	if err := s.persist(ctx, constants.KindCollection, def.Name, value, false); err != nil {
		return nil, err
	}
	s.collections[def.Name] = def
	log.Printf("✅ Collection definition registered: %s", def.Name)
	return def, nil
}

// UpdateCollection validates and replaces an existing collection definition
func (s *RegistryService) UpdateCollection(ctx context.Context, name string, value map[string]interface{}) (*definition.CollectionDefinition, error) {
	def, report := s.checkCollection(value, name)
	if report != nil {
		return nil, errors.NewDefinitionRejectedError(constants.KindCollection, name, report)
	}
	if def.Name != name {
		return nil, errors.NewValidationError("name", fmt.Sprintf("definition name %q does not match path %q", def.Name, name))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[name]; !exists {
		return nil, errors.NewNotFoundError("collection definition", name)
	}
	if err := s.persist(ctx, constants.KindCollection, name, value, true); err != nil {
		return nil, err
	}
	s.collections[name] = def
	log.Printf("✅ Collection definition updated: %s", name)
	return def, nil
}

// checkCollection runs the full pipeline for a candidate collection. The
// replacing name, when non-empty, marks which cached entry the candidate
// supersedes in the reference and cycle analysis. A nil report means the
// candidate passed.
func (s *RegistryService) checkCollection(value map[string]interface{}, replacing string) (*definition.CollectionDefinition, *definition.ValidationReport) {
	result := s.engine.ValidateCollectionDefinition(value)
	def, decodeErr := definition.CollectionFromValue(value)

	if result.Valid && decodeErr == nil {
		candidates := s.candidateGraph(def, replacing)
		known := make(map[string]bool, len(candidates))
		for name := range candidates {
			known[name] = true
		}
		result.Merge(s.engine.ValidateCollectionReferences(def, known))
		result.Merge(s.engine.DetectCircularDependencies(candidates))
	}

	if !result.Valid {
		return def, s.engine.BuildReport(def, result.Errors)
	}
	return def, nil
}

// candidateGraph copies the cached collection set with the candidate
// applied on top
func (s *RegistryService) candidateGraph(def *definition.CollectionDefinition, replacing string) map[string]*definition.CollectionDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make(map[string]*definition.CollectionDefinition, len(s.collections)+1)
	for name, cached := range s.collections {
		candidates[name] = cached
	}
	if replacing != "" && replacing != def.Name {
		delete(candidates, replacing)
	}
	candidates[def.Name] = def
	return candidates
}

// GetCollection returns a cached collection definition by name
func (s *RegistryService) GetCollection(name string) (*definition.CollectionDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.collections[name]
	if !ok {
		return nil, errors.NewNotFoundError("collection definition", name)
	}
	return def, nil
}

// ListCollections returns all cached collection definitions sorted by name
func (s *RegistryService) ListCollections() []*definition.CollectionDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]*definition.CollectionDefinition, 0, len(names))
	for _, name := range names {
		defs = append(defs, s.collections[name])
	}
	return defs
}

// DeleteCollection removes a collection definition. Deletion is refused
// while another collection's relationships still target it.
func (s *RegistryService) DeleteCollection(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[name]; !exists {
		return errors.NewNotFoundError("collection definition", name)
	}
	for otherName, other := range s.collections {
		if otherName == name {
			continue
		}
		for relName, rel := range other.Relationships {
			if rel != nil && rel.Collection == name {
				return errors.NewValidationError("name",
					fmt.Sprintf("collection %q is still referenced by %s.relationships.%s", name, otherName, relName))
			}
		}
	}

	if err := s.repo.Delete(ctx, constants.KindCollection, name); err != nil {
		return errors.NewInternalError("failed to delete collection definition", err)
	}
	delete(s.collections, name)
	log.Printf("🗑️ Collection definition deleted: %s", name)
	return nil
}

// CreateFunction validates and registers a new function definition
func (s *RegistryService) CreateFunction(ctx context.Context, value map[string]interface{}) (*definition.FunctionDefinition, error) {
	result := s.engine.ValidateFunctionDefinition(value)
	def, decodeErr := definition.FunctionFromValue(value)
	if !result.Valid || decodeErr != nil {
		name := ""
		if def != nil {
			name = def.Name
		}
		return nil, errors.NewDefinitionRejectedError(constants.KindFunction, name, s.engine.BuildReport(nil, result.Errors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.functions[def.Name]; exists {
		return nil, errors.NewConflictError("function definition", "name", def.Name)
	}
	if err := s.persist(ctx, constants.KindFunction, def.Name, value, false); err != nil {
		return nil, err
	}
	s.functions[def.Name] = def
	log.Printf("✅ Function definition registered: %s (v%s)", def.Name, def.Version)
	return def, nil
}

// UpdateFunction validates and replaces an existing function definition
func (s *RegistryService) UpdateFunction(ctx context.Context, name string, value map[string]interface{}) (*definition.FunctionDefinition, error) {
	result := s.engine.ValidateFunctionDefinition(value)
	def, decodeErr := definition.FunctionFromValue(value)
	if !result.Valid || decodeErr != nil {
		return nil, errors.NewDefinitionRejectedError(constants.KindFunction, name, s.engine.BuildReport(nil, result.Errors))
	}
	if def.Name != name {
		return nil, errors.NewValidationError("name", fmt.Sprintf("definition name %q does not match path %q", def.Name, name))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.functions[name]; !exists {
		return nil, errors.NewNotFoundError("function definition", name)
	}
	if err := s.persist(ctx, constants.KindFunction, name, value, true); err != nil {
		return nil, err
	}
	s.functions[name] = def
	log.Printf("✅ Function definition updated: %s (v%s)", name, def.Version)
	return def, nil
}

// GetFunction returns a cached function definition by name
func (s *RegistryService) GetFunction(name string) (*definition.FunctionDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.functions[name]
	if !ok {
		return nil, errors.NewNotFoundError("function definition", name)
	}
	return def, nil
}

// ListFunctions returns all cached function definitions sorted by name
func (s *RegistryService) ListFunctions() []*definition.FunctionDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.functions))
	for name := range s.functions {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]*definition.FunctionDefinition, 0, len(names))
	for _, name := range names {
		defs = append(defs, s.functions[name])
	}
	return defs
}

// DeleteFunction removes a function definition
func (s *RegistryService) DeleteFunction(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.functions[name]; !exists {
		return errors.NewNotFoundError("function definition", name)
	}
	if err := s.repo.Delete(ctx, constants.KindFunction, name); err != nil {
		return errors.NewInternalError("failed to delete function definition", err)
	}
	delete(s.functions, name)
	log.Printf("🗑️ Function definition deleted: %s", name)
	return nil
}

// CreateRBACBundle validates and registers a new RBAC definition
func (s *RegistryService) CreateRBACBundle(ctx context.Context, value map[string]interface{}) (*definition.RBACDefinition, error) {
	result := s.engine.ValidateRBACDefinition(value)
	def, decodeErr := definition.RBACFromValue(value)
	if !result.Valid || decodeErr != nil {
		name := ""
		if def != nil {
			name = def.Name
		}
		return nil, errors.NewDefinitionRejectedError(constants.KindRBAC, name, s.engine.BuildReport(nil, result.Errors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rbacBundles[def.Name]; exists {
		return nil, errors.NewConflictError("rbac definition", "name", def.Name)
	}
	if err := s.persist(ctx, constants.KindRBAC, def.Name, value, false); err != nil {
		return nil, err
	}
	s.rbacBundles[def.Name] = def
	log.Printf("✅ RBAC definition registered: %s", def.Name)
	return def, nil
}

// UpdateRBACBundle validates and replaces an existing RBAC definition
func (s *RegistryService) UpdateRBACBundle(ctx context.Context, name string, value map[string]interface{}) (*definition.RBACDefinition, error) {
	result := s.engine.ValidateRBACDefinition(value)
	def, decodeErr := definition.RBACFromValue(value)
	if !result.Valid || decodeErr != nil {
		return nil, errors.NewDefinitionRejectedError(constants.KindRBAC, name, s.engine.BuildReport(nil, result.Errors))
	}
	if def.Name != name {
		return nil, errors.NewValidationError("name", fmt.Sprintf("definition name %q does not match path %q", def.Name, name))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rbacBundles[name]; !exists {
		return nil, errors.NewNotFoundError("rbac definition", name)
	}
	if err := s.persist(ctx, constants.KindRBAC, name, value, true); err != nil {
		return nil, err
	}
	s.rbacBundles[name] = def
	log.Printf("✅ RBAC definition updated: %s", name)
	return def, nil
}

// GetRBACBundle returns a cached RBAC definition by name
func (s *RegistryService) GetRBACBundle(name string) (*definition.RBACDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.rbacBundles[name]
	if !ok {
		return nil, errors.NewNotFoundError("rbac definition", name)
	}
	return def, nil
}

// ListRBACBundles returns all cached RBAC definitions sorted by name
func (s *RegistryService) ListRBACBundles() []*definition.RBACDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.rbacBundles))
	for name := range s.rbacBundles {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]*definition.RBACDefinition, 0, len(names))
	for _, name := range names {
		defs = append(defs, s.rbacBundles[name])
	}
	return defs
}

// DeleteRBACBundle removes an RBAC definition
func (s *RegistryService) DeleteRBACBundle(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rbacBundles[name]; !exists {
		return errors.NewNotFoundError("rbac definition", name)
	}
	if err := s.repo.Delete(ctx, constants.KindRBAC, name); err != nil {
		return errors.NewInternalError("failed to delete rbac definition", err)
	}
	delete(s.rbacBundles, name)
	log.Printf("🗑️ RBAC definition deleted: %s", name)
	return nil
}

// GenerateSchema projects the document schema of a registered collection
func (s *RegistryService) GenerateSchema(name string) (*metaschema.Node, error) {
	def, err := s.GetCollection(name)
	if err != nil {
		return nil, err
	}
	return s.engine.GenerateDocumentSchema(def), nil
}

// ValidateDocument checks an instance document against a registered
// collection's projected schema
func (s *RegistryService) ValidateDocument(name string, data map[string]interface{}) (*definition.ValidationResult, error) {
	def, err := s.GetCollection(name)
	if err != nil {
		return nil, err
	}
	return s.engine.ValidateDocument(def, data), nil
}

// RevalidateGraph re-runs the cross-definition checks over the whole
// cached collection set. Findings are logged, not enforced: definitions
// already registered stay registered, but drift (e.g. after manual data
// surgery) becomes visible.
func (s *RegistryService) RevalidateGraph(ctx context.Context) []definition.ValidationError {
	if err := s.RefreshCache(ctx); err != nil {
		log.Printf("❌ Revalidation aborted, cache refresh failed: %v", err)
		return nil
	}

	s.mu.RLock()
	collections := make(map[string]*definition.CollectionDefinition, len(s.collections))
	for name, def := range s.collections {
		collections[name] = def
	}
	s.mu.RUnlock()

	known := make(map[string]bool, len(collections))
	for name := range collections {
		known[name] = true
	}

	var findings []definition.ValidationError
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		findings = append(findings, s.engine.ValidateCollectionReferences(collections[name], known)...)
	}
	findings = append(findings, s.engine.DetectCircularDependencies(collections)...)

	if len(findings) == 0 {
		log.Printf("✅ Graph revalidation clean: %d collections", len(collections))
	} else {
		for _, finding := range findings {
			log.Printf("⚠️ Graph revalidation finding: %s", finding.Error())
		}
	}
	return findings
}

// persist is called with s.mu held
func (s *RegistryService) persist(ctx context.Context, kind, name string, value map[string]interface{}, update bool) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.NewInternalError("failed to serialize definition", err)
	}

	record := &ports.DefinitionRecord{
		ID:               utils.GenerateID(),
		Name:             name,
		Kind:             kind,
		Payload:          payload,
		CreatedDate:      time.Now(),
		LastModifiedDate: time.Now(),
	}

	if update {
		err = s.repo.Update(ctx, record)
	} else {
		err = s.repo.Save(ctx, record)
	}
	if err != nil {
		return errors.NewInternalError(fmt.Sprintf("failed to persist %s definition", kind), err)
	}
	return nil
}
