package document

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/typewriter/pkg/errors"
	"github.com/arthur-debert/typewriter/pkg/logging"
	"github.com/arthur-debert/typewriter/pkg/paths"
)

var log = logging.GetLogger("document")

// rawFile mirrors one [[file]] (or [[track]]) table.
type rawFile struct {
	File                string   `toml:"file"`
	Source              string   `toml:"source"`
	Destination         string   `toml:"destination"`
	SkipIfSameContent   *bool    `toml:"skip_if_same_content"`
	PreHook             []string `toml:"pre_hook"`
	PostHook            []string `toml:"post_hook"`
	ContinueOnHookError bool     `toml:"continue_on_hook_error"`
}

// rawLink mirrors one [[link]] (or alias) table.
type rawLink struct {
	File string `toml:"file"`
}

// rawVar mirrors one [[var]] (or alias) table. "type" is accepted as an
// alias of "kind".
type rawVar struct {
	Name  string `toml:"name"`
	Kind  string `toml:"kind"`
	Type  string `toml:"type"`
	Value string `toml:"value"`
}

// rawHook mirrors one [[hook]] (or [[command]]) table.
type rawHook struct {
	Command         string `toml:"command"`
	Stage           string `toml:"stage"`
	ContinueOnError bool   `toml:"continue_on_error"`
}

// rawDocument is the decode target for a whole document. Each section
// lists its canonical name and every alias; aliases append after the
// canonical entries in the order declared here.
type rawDocument struct {
	File  []rawFile `toml:"file"`
	Track []rawFile `toml:"track"`

	Link    []rawLink `toml:"link"`
	Include []rawLink `toml:"include"`
	Use     []rawLink `toml:"use"`
	Import  []rawLink `toml:"import"`

	Var      []rawVar `toml:"var"`
	Variable []rawVar `toml:"variable"`
	Define   []rawVar `toml:"define"`

	Hook    []rawHook `toml:"hook"`
	Command []rawHook `toml:"command"`

	// Config is decoded as an opaque map first, so that presence can be
	// detected before defaults are filled in (default-true options make
	// presence undetectable on the typed struct).
	Config map[string]interface{} `toml:"config"`
}

// configDocument is the second decode pass: the typed [config] table is
// merged over pre-filled defaults.
type configDocument struct {
	Config GlobalConfig `toml:"config"`
}

// Parse reads and decodes a single document. path must already be
// canonical; relative paths inside the document resolve against its
// directory.
func Parse(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigRead, "reading document %s", path)
	}

	var raw rawDocument
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "parsing document %s", path)
	}

	doc := &Document{
		Path: path,
		Dir:  filepath.Dir(path),
	}

	if raw.Config != nil {
		cd := configDocument{Config: DefaultConfig()}
		if err := toml.Unmarshal(data, &cd); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "parsing [config] in document %s", path)
		}
		if err := cd.Config.Validate(); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "in document %s", path)
		}
		doc.Config = &cd.Config
	}

	for _, l := range append(append(append(raw.Link, raw.Include...), raw.Use...), raw.Import...) {
		if l.File == "" {
			return nil, errors.Newf(errors.ErrConfigValid, "link without a file in document %s", path)
		}
		doc.Links = append(doc.Links, LinkRef{File: l.File})
	}

	for _, f := range append(raw.File, raw.Track...) {
		entry, err := buildFileEntry(f, doc)
		if err != nil {
			return nil, err
		}
		doc.Files = append(doc.Files, entry)
	}

	for _, v := range append(append(raw.Var, raw.Variable...), raw.Define...) {
		decl, err := buildVarDecl(v, doc)
		if err != nil {
			return nil, err
		}
		doc.Vars = append(doc.Vars, decl)
	}

	for _, h := range append(raw.Hook, raw.Command...) {
		decl, err := buildHookDecl(h, doc)
		if err != nil {
			return nil, err
		}
		doc.Hooks = append(doc.Hooks, decl)
	}

	log.Debug().
		Str("path", path).
		Int("links", len(doc.Links)).
		Int("files", len(doc.Files)).
		Int("vars", len(doc.Vars)).
		Int("hooks", len(doc.Hooks)).
		Bool("has_config", doc.Config != nil).
		Msg("Document parsed")

	return doc, nil
}

func buildFileEntry(f rawFile, doc *Document) (FileEntry, error) {
	source := f.File
	if source == "" {
		source = f.Source
	} else if f.Source != "" && f.Source != f.File {
		return FileEntry{}, errors.Newf(errors.ErrConfigValid,
			"file entry in document %s sets both file=%q and source=%q", doc.Path, f.File, f.Source)
	}
	if source == "" {
		return FileEntry{}, errors.Newf(errors.ErrConfigValid, "file entry without a source in document %s", doc.Path)
	}
	if f.Destination == "" {
		return FileEntry{}, errors.Newf(errors.ErrConfigValid, "file entry %q without a destination in document %s", source, doc.Path)
	}

	srcPath, err := paths.Clean(source, doc.Dir)
	if err != nil {
		return FileEntry{}, errors.Wrapf(err, errors.ErrConfigValid, "source path %q in document %s", source, doc.Path)
	}
	dstPath, err := paths.Clean(f.Destination, doc.Dir)
	if err != nil {
		return FileEntry{}, errors.Wrapf(err, errors.ErrConfigValid, "destination path %q in document %s", f.Destination, doc.Path)
	}

	skipSame := true
	if f.SkipIfSameContent != nil {
		skipSame = *f.SkipIfSameContent
	}

	return FileEntry{
		Source:              srcPath,
		Destination:         dstPath,
		SkipIfSameContent:   skipSame,
		PreHooks:            f.PreHook,
		PostHooks:           f.PostHook,
		ContinueOnHookError: f.ContinueOnHookError,
		Origin:              doc.Path,
	}, nil
}

func buildVarDecl(v rawVar, doc *Document) (VarDecl, error) {
	if err := ValidateVarName(v.Name); err != nil {
		return VarDecl{}, errors.Wrapf(err, errors.ErrConfigValid, "in document %s", doc.Path)
	}

	kindStr := v.Kind
	if kindStr == "" {
		kindStr = v.Type
	} else if v.Type != "" && v.Type != v.Kind {
		return VarDecl{}, errors.Newf(errors.ErrConfigValid,
			"variable %q in document %s sets both kind=%q and type=%q", v.Name, doc.Path, v.Kind, v.Type)
	}

	kind := VarKind(kindStr)
	switch kind {
	case "":
		kind = VarLiteral
	case VarLiteral, VarCommand, VarEnvironment:
	default:
		return VarDecl{}, errors.Newf(errors.ErrConfigValid,
			"variable %q in document %s has invalid kind %q (literal, command or environment)", v.Name, doc.Path, kindStr)
	}

	return VarDecl{
		Name:   v.Name,
		Kind:   kind,
		Value:  v.Value,
		Origin: doc.Path,
	}, nil
}

func buildHookDecl(h rawHook, doc *Document) (HookDecl, error) {
	if h.Command == "" {
		return HookDecl{}, errors.Newf(errors.ErrConfigValid, "hook without a command in document %s", doc.Path)
	}

	stage := HookStage(h.Stage)
	switch stage {
	case StagePreApply, StagePostApply:
	default:
		return HookDecl{}, errors.Newf(errors.ErrHookStage,
			"invalid hook stage %q in document %s (pre_apply or post_apply)", h.Stage, doc.Path)
	}

	return HookDecl{
		Command:         h.Command,
		Stage:           stage,
		ContinueOnError: h.ContinueOnError,
		Origin:          doc.Path,
	}, nil
}
