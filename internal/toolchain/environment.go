package toolchain

// Compiler executables resolved from a profile.
//
// Both fields are non-empty once resolution succeeds. The value is never
// mutated; stages receive it by value and only the process runner turns it
// into environment variables of a child process.
type Environment struct {
	CC  string `json:"cc"`
	CXX string `json:"cxx"`
}

// Returns the child-process environment overlay for this toolchain.
func (e Environment) Overlay() map[string]string {
	return map[string]string{
		"CC":  e.CC,
		"CXX": e.CXX,
	}
}

// Returns true if both compilers are set.
func (e Environment) Complete() bool {
	return e.CC != "" && e.CXX != ""
}
