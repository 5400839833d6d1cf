package config

// ScenarioFileExt is the extension of recorded scenario files.
const ScenarioFileExt = ".yaml"

// ScenarioFileExtensions are all recognized scenario file extensions
var ScenarioFileExtensions = []string{".yaml", ".yml"}

// DefaultConfigFile is looked up in the working directory when no
// --config flag is given.
const DefaultConfigFile = "fulfill.yaml"

// DefaultCatalogPath is where the impl catalog lives when not configured.
const DefaultCatalogPath = ".fulfill/catalog.db"

// Language-defined capability names (lang items)
const (
	FnPtrTraitLangItem = "fn_ptr_trait"
	SizedTraitLangItem = "sized"
	CopyTraitLangItem  = "copy"
)

// Result keywords used in recorded traces
const (
	ResultYes           = "yes"
	ResultNoSolution    = "no_solution"
	ResultAmbiguous     = "ambiguous"
	ResultOverflow      = "overflow"
	ResultOverflowLimit = "overflow_suggest_limit"
)

// Root obligation modes: which builder entry point handles the obligation
const (
	ModeError    = "error"
	ModeStalled  = "stalled"
	ModeOverflow = "overflow"
)
