package model

// DefNode is one node of the check definitions tree, whether read from a
// local directory or fetched from a remote repository listing. The tree is at
// most three directory levels deep (role/container/check).
type DefNode struct {
	Name     string // Base name: directory name, or file name including ".env".
	IsLeaf   bool
	Contents string    // Leaf only: raw file contents.
	Children []DefNode // Directory only.
}
