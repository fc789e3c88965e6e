package constant

// SourceTemplate is a Go text/template for scaffolding new source files.
const SourceTemplate = `# {{ .Title }}
# Chapters must be ordered and contiguous; "end" may be left equal to the
# next chapter's "start". The last chapter is extended to videoLength.
title: {{ printf "%q" .Title }}
hlsPlaylistUrl: {{ printf "%q" .URL }}
videoLength: {{ .Length }}
chapters:
{{- range .Chapters }}
  - title: {{ printf "%q" .Title }}
    start: {{ .Start }}
    end: {{ .End }}
{{- end }}
`
