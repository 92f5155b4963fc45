// Package manifest reads resolved classpath manifests.
//
// A manifest is a YAML or JSON document produced by an external dependency
// resolver. It lists every resolved runtime artifact with its coordinate and
// the path of its file:
//
//	artifacts:
//	  - coordinate: org.postgresql:postgresql:42.5.4
//	    file: /home/u/.m2/repository/org/postgresql/postgresql/42.5.4/postgresql-42.5.4.jar
//	  - group: com.fasterxml.uuid
//	    module: java-uuid-generator
//	    version: 4.1.0
//	    file: libs/java-uuid-generator-4.1.0.jar
//
// Relative file paths are resolved against the manifest's directory.
package manifest
