/*
Package customtag rewrites custom tags such as <x-forms.button> into elements
that point at a template file, for example <module href="modules/forms/button.html">,
so that a later transform can inline or extend the referenced file.

A tag name is translated into a file name by stripping the tag prefix,
turning dots into folders and appending the file extension. Tags without a
namespace separator are looked up in each search root in order, first as a
file and then as a folder index file. Tags such as <x-theme-dark::button> are
looked up in the namespace's custom, root and fallback directories, and can
fall back to the search roots.

Unresolved tags either fail the whole run (strict mode, the default) or are
left untouched. After every tag has been visited the tree runs through the
configured transforms; the modules and extend packages provide the default
ones.
*/
package customtag
