// Package shell turns parsed command lines into calls on a sim.Filesystem.
// Dispatch is a pure function of the command and the filesystem state, apart
// from a Prompter callback used for the handful of commands that ask a
// follow-up question (passwords and adduser fields). The interactive
// read/print loop lives in cmd/simfs.
package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pedromagedanz/simfs"
	"github.com/pedromagedanz/simfs/identity"
	"github.com/pedromagedanz/simfs/sim"
)

// Prompter supplies answers to a command's secondary prompts.
type Prompter interface {
	Prompt(label string) (string, error)
}

// PromptFunc adapts a plain function to the Prompter interface.
type PromptFunc func(label string) (string, error)

func (f PromptFunc) Prompt(label string) (string, error) {
	return f(label)
}

// Command is one parsed input line.
type Command struct {
	Name string
	Args []string
}

// Parse splits an input line into a command name and its arguments. Blank
// lines produce a Command with an empty name.
func Parse(line string) Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}
	}
	return Command{Name: fields[0], Args: fields[1:]}
}

// Result is the outcome of dispatching one command. Err is never fatal: the
// loop reports it and keeps going. Quit asks the loop to terminate with
// success.
type Result struct {
	Output string
	Quit   bool
	Err    error
}

func errResult(err error) Result {
	return Result{Err: err}
}

func usageError(usage string) Result {
	return errResult(simfs.ErrInvalidFormat.WithMessage("usage: " + usage))
}

// Dispatch executes one command against the filesystem.
func Dispatch(fsys *sim.Filesystem, cmd Command, prompter Prompter) Result {
	switch cmd.Name {
	case "":
		return Result{}
	case "ls":
		return dispatchLs(fsys, cmd.Args)
	case "df":
		return Result{Output: renderUsage(fsys.Usage())}
	case "mkdir":
		if len(cmd.Args) != 1 {
			return usageError("mkdir <name>")
		}
		if _, err := fsys.Mkdir(cmd.Args[0]); err != nil {
			return errResult(err)
		}
		return Result{}
	case "rmdir":
		if len(cmd.Args) != 1 {
			return usageError("rmdir <name>")
		}
		return errResult(fsys.Rmdir(cmd.Args[0]))
	case "touch":
		return dispatchTouch(fsys, cmd.Args)
	case "rm":
		if len(cmd.Args) != 2 {
			return usageError("rm <parentDir> <fileName>")
		}
		return errResult(fsys.Rm(cmd.Args[0], cmd.Args[1]))
	case "adduser":
		return dispatchAddUser(fsys, prompter)
	case "rmuser":
		return dispatchRmUser(fsys, prompter)
	case "lsuser":
		return Result{Output: renderUsers(fsys)}
	case "su":
		return dispatchSu(fsys, cmd.Args, prompter)
	case "mkfs":
		fsys.Mkfs()
		return Result{}
	case "chmod":
		return dispatchChmod(fsys, cmd.Args, prompter)
	case "chown":
		return dispatchChown(fsys, cmd.Args)
	case "echo":
		if len(cmd.Args) < 2 {
			return usageError("echo <name> <content>")
		}
		return errResult(fsys.Echo(cmd.Args[0], strings.Join(cmd.Args[1:], " ")))
	case "cat":
		if len(cmd.Args) != 1 {
			return usageError("cat <fileName>")
		}
		content, err := fsys.Cat(cmd.Args[0])
		if err != nil {
			return errResult(err)
		}
		return Result{Output: content}
	case "cd":
		if len(cmd.Args) != 1 {
			return usageError("cd <name>")
		}
		return errResult(fsys.Cd(cmd.Args[0]))
	case "shutdown":
		return Result{Quit: true}
	}

	return errResult(simfs.ErrInvalidFormat.WithMessage(
		fmt.Sprintf("unknown command %q", cmd.Name)))
}

func dispatchLs(fsys *sim.Filesystem, args []string) Result {
	if len(args) == 0 {
		return Result{Output: renderDirectory(fsys.CurrentDirectory())}
	}
	if len(args) == 2 && args[0] == "-i" {
		entry := fsys.Resolve(args[1])
		if entry == nil {
			return errResult(simfs.ErrNotFound.WithMessage(
				fmt.Sprintf("no entry named %q", args[1])))
		}
		return Result{Output: renderInode(entry)}
	}
	return usageError("ls [-i <name>]")
}

func dispatchTouch(fsys *sim.Filesystem, args []string) Result {
	if len(args) != 3 {
		return usageError("touch <name> <sizeBytes> <parentDir>")
	}

	size, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return errResult(simfs.ErrInvalidFormat.WithMessage(
			fmt.Sprintf("%q is not a valid size", args[1])))
	}

	if _, err := fsys.Touch(args[0], size, args[2]); err != nil {
		return errResult(err)
	}
	return Result{}
}

func dispatchAddUser(fsys *sim.Filesystem, prompter Prompter) Result {
	username, err := prompter.Prompt("username")
	if err != nil {
		return errResult(err)
	}
	password, err := prompter.Prompt("password")
	if err != nil {
		return errResult(err)
	}

	user, err := fsys.AddUser(username, password)
	if err != nil {
		return errResult(err)
	}
	return Result{Output: fmt.Sprintf("created user %d (%s)", user.ID, user.Username)}
}

func dispatchRmUser(fsys *sim.Filesystem, prompter Prompter) Result {
	answer, err := prompter.Prompt("user id")
	if err != nil {
		return errResult(err)
	}

	targetID, err := strconv.Atoi(answer)
	if err != nil {
		return errResult(simfs.ErrInvalidFormat.WithMessage(
			fmt.Sprintf("%q is not a valid user id", answer)))
	}
	return errResult(fsys.RemoveUser(targetID))
}

func dispatchSu(fsys *sim.Filesystem, args []string, prompter Prompter) Result {
	if len(args) != 1 {
		return usageError("su <userId>")
	}

	userID, err := strconv.Atoi(args[0])
	if err != nil {
		return errResult(simfs.ErrInvalidFormat.WithMessage(
			fmt.Sprintf("%q is not a valid user id", args[0])))
	}

	password, err := prompter.Prompt("password")
	if err != nil {
		return errResult(err)
	}
	return errResult(fsys.SwitchUser(userID, password))
}

func dispatchChmod(fsys *sim.Filesystem, args []string, prompter Prompter) Result {
	if len(args) != 3 {
		return usageError("chmod <name> <group> <rwx-string>")
	}

	class, err := simfs.ParsePermissionClass(args[1])
	if err != nil {
		return errResult(err)
	}

	// The administrator is never asked for a password.
	password := ""
	if fsys.ActiveUser().ID != identity.AdminID {
		password, err = prompter.Prompt("owner password")
		if err != nil {
			return errResult(err)
		}
	}

	return errResult(fsys.Chmod(args[0], class, args[2], password))
}

func dispatchChown(fsys *sim.Filesystem, args []string) Result {
	if len(args) != 2 {
		return usageError("chown <name> <newUserId>")
	}

	newOwnerID, err := strconv.Atoi(args[1])
	if err != nil {
		return errResult(simfs.ErrInvalidFormat.WithMessage(
			fmt.Sprintf("%q is not a valid user id", args[1])))
	}
	return errResult(fsys.Chown(args[0], newOwnerID))
}
