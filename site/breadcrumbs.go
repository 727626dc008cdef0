package site

import (
	"path"
	"strings"

	"github.com/pagewright/pagewright/templatex"
)

func buildBreadcrumbs(route, title, base, siteName string) []templatex.Breadcrumb {
	rootHref := path.Join("/", strings.Trim(strings.TrimSpace(base), "/")) + "/"

	crumbs := make([]templatex.Breadcrumb, 0, 4)

	normRoute := strings.Trim(route, "/")
	if normRoute == "" {
		crumbs = append(crumbs, templatex.Breadcrumb{Title: title, Current: true})
		return crumbs
	}

	crumbs = append(crumbs, templatex.Breadcrumb{Title: siteName, Path: rootHref})

	segments := strings.Split(normRoute, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		isLast := i == len(segments)-1
		crumb := templatex.Breadcrumb{Current: isLast}
		if isLast {
			crumb.Title = title
		} else {
			crumb.Title = deriveTitle(segment)
		}
		crumbs = append(crumbs, crumb)
	}

	return crumbs
}
