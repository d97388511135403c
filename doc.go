// A bootstrapper for running a Python Telegram userbot inside Termux.
//
// The installer brings a fresh Termux session to a runnable state: it installs the
// system packages through pkg, clones (or refreshes) the application repository,
// creates a Python virtual environment, installs the application's dependencies and
// writes the first-run .env configuration file. Every step checks whether its work is
// already done, so running the installer again is safe.
//
// Behaviour is controlled through environment variables (REPO_URL, BRANCH,
// INSTALL_DIR, FULL_UPGRADE, ENV_MODE, INSTALLER_LANG) so that the usual
// "curl ... | sh" invocation can be customized without flags. Defaults live in the
// bundled resources/config.yml.
//
// The resources directory is bundled with go.rice. For a standalone binary, run
// "rice append --exec termux-installer" after building.
//
// install.sh is the "curl ... | sh" entry point: it fetches (or builds) the binary and
// execs it with the terminal as stdin, passing the environment through.
package termux_installer
