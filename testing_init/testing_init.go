/*
 * Common testing init routines
 */
package testing_init

import (
	"os"
	"path"
	"runtime"

	log "github.com/sirupsen/logrus"
)

// Path of the example config relative to the repository root.
const ConfigPath = "./config.yaml"

/*
 * init() function is run whenever this package has been included in another package.
 * It is solely used in _test.go files of packages and will automatically chdir() to the main directory for execution.
 * This enables us to use the same hardcoded paths e.g. for config.yaml and weights.txt as in main.go.
 */
func init() {
	_, filename, _, _ := runtime.Caller(0)
	dir := path.Join(path.Dir(filename) + "/../")
	log.Debugln("test_init: chdir() to: ", dir)
	err := os.Chdir(dir)
	if err != nil {
		panic(err)
	}
}
