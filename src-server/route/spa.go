package route

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"potluck/src-server/utils"
)

func SPA(muxer *http.ServeMux, as *utils.AppState) {
	if as.Config.GetStaticWebClientDir() == "" {
		return
	}

	files := http.FS(os.DirFS(as.Config.GetStaticWebClientDir()))
	indexFile, err := files.Open("index.html")
	if err != nil {
		slog.Error("Can't open index.html", "err", err)
		return
	}
	indexFileStat, err := indexFile.Stat()
	if err != nil {
		slog.Error("Can't get index.html stat", "err", err)
		return
	}

	muxer.HandleFunc("GET /{filepath...}", func(w http.ResponseWriter, r *http.Request) {
		filepath := filepath.Clean(r.PathValue("filepath"))
		if filepath == "." {
			filepath = "index.html"
		}

		file, err := files.Open(filepath)
		if err != nil {
			http.ServeContent(w, r, indexFileStat.Name(), indexFileStat.ModTime(), indexFile)
			return
		}

		stat, err := file.Stat()
		if err != nil {
			http.ServeContent(w, r, indexFileStat.Name(), indexFileStat.ModTime(), indexFile)
			return
		}

		http.ServeContent(w, r, stat.Name(), stat.ModTime(), file)
	})
}
