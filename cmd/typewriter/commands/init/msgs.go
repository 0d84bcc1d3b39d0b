package init

// Message constants
const (
	MsgShort = "Create a starter configuration document"
	MsgLong  = `The 'init' command writes a commented template document you can
edit into your configuration. If the target file already exists you are
asked before it is overwritten.`

	MsgExample = `  # Create typewriter.toml in the current directory
  typewriter init

  # Create a document somewhere else
  typewriter init --dir ~/dotfiles --file system.toml`
)
