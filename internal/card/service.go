package card

// Service is the orchestration layer for project persistence: saving and
// loading archives, the decoration-layer library, autosave and recovery,
// and moving archives in and out of the document directory.
//
// Live editing state is never held here; every operation takes the
// Workspace it reads from or writes to.
type Service struct {
	archiver  Archiver
	documents Documents
	autosave  Documents
	store     KeyValueStore
	vault     Vault
	sealer    Sealer
	logger    Logger
	clock     Clock
	idgen     IDGenerator
}

// NewService creates a Service with the provided dependencies.
// autosave must be a different location from documents so that autosave
// files never appear in the user's project list.
func NewService(archiver Archiver, documents, autosave Documents, store KeyValueStore, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		archiver:  archiver,
		documents: documents,
		autosave:  autosave,
		store:     store,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
	}
}

// SetVault enables mirroring of saved projects to v. A nil vault disables it.
func (s *Service) SetVault(v Vault) { s.vault = v }

// SetSealer enables passphrase-protected export and import.
func (s *Service) SetSealer(sl Sealer) { s.sealer = sl }
