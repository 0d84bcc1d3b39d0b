package apply

// Message constants
const (
	MsgShort = "Apply a configuration document to the system"
	MsgLong  = `The 'apply' command resolves the given root document and every
document it links, resolves all declared variables, validates every file
entry, and then writes each source file to its destination with variable
substitution.

Destinations are backed up before anything is written; if the run fails
part-way through, every touched destination is restored. Drift detection
warns before overwriting files that were changed outside typewriter.`

	MsgExample = `  # Apply the document in the current directory
  typewriter apply

  # Apply a specific document
  typewriter apply --file ~/dotfiles/typewriter.toml

  # Apply without any confirmation prompts
  typewriter apply --yes --file system.toml`
)
